package commands

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"sweepgo/pkg/runner"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available components",
		RunE: func(cmd *cobra.Command, args []string) error {
			writeList("Generators", []string{"random", "halton", "forest", "surrogate", "strategy"})
			writeList("Runners", []string{"local", "exec", "mock"})
			writeList("Benchmarks", runner.BenchmarkNames())
			writeList("Acquisitions", []string{"ei", "ucb", "pi", "thompson"})
			writeList("Stopping rules", []string{"percentile"})
			writeList("Formats", []string{"table", "json", "html", "markdown", "csv"})
			return nil
		},
	}
	return cmd
}

func writeList(title string, items []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{title})
	for _, item := range items {
		table.Append([]string{item})
	}
	table.Render()
}
