package main

import (
	"fmt"
	"strings"

	"counsellor/internal/counsellor"
	"counsellor/internal/store"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	chatUser int64
	chatRaw  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to the counsellor and print the reply",
	Long: `Runs a single counsellor interaction against the local database: the
reply's actions are applied exactly as the API would apply them.

Example:
  counsellor chat --user 1 "Which UK universities fit my budget?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Int64Var(&chatUser, "user", 0, "Student id (required)")
	chatCmd.Flags().BoolVar(&chatRaw, "raw", false, "Print the markdown without rendering")
	_ = chatCmd.MarkFlagRequired("user")
}

var actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	var res *counsellor.Result
	err = a.withSession(ctx, func(sess *store.Session) error {
		var err error
		res, err = a.engine.Respond(ctx, sess, chatUser, strings.Join(args, " "))
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderMarkdown(res.Message, chatRaw))
	for _, act := range res.Actions {
		if act.Type == counsellor.TypeNone {
			continue
		}
		fmt.Fprintln(out, actionStyle.Render("→ "+act.Type))
	}
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Stage:"), res.Stage)
	return nil
}

func renderMarkdown(md string, raw bool) string {
	if raw {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n")
}
