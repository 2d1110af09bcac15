package main

import (
	"fmt"
	"strings"

	"counsellor/internal/counsellor"
	"counsellor/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var stageUser int64

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Show a student's derived stage and selections",
	RunE:  runStage,
}

func init() {
	stageCmd.Flags().Int64Var(&stageUser, "user", 0, "Student id (required)")
	_ = stageCmd.MarkFlagRequired("user")
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runStage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.withSession(ctx, func(sess *store.Session) error {
		snap, err := counsellor.Project(ctx, sess, stageUser)
		if err != nil {
			return err
		}
		shortlisted, err := a.catalog.Names(ctx, sess, snap.Shortlisted)
		if err != nil {
			return err
		}
		locked, err := a.catalog.Names(ctx, sess, snap.Locked)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Stage:"), snap.Stage)
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Shortlisted:"), listOrNone(shortlisted))
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Locked:"), listOrNone(locked))
		for _, t := range snap.Tasks {
			fmt.Fprintf(out, "  [%s] %s\n", taskMark(t.Status), t.Title)
		}
		return nil
	})
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return mutedStyle.Render("none")
	}
	return strings.Join(names, ", ")
}

func taskMark(status string) string {
	if status == counsellor.TaskDone {
		return "x"
	}
	return " "
}
