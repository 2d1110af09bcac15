package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled university catalog into an empty database",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.seed(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog already seeded.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d universities.\n", n)
	return nil
}
