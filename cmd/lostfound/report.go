package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <name> [argument]",
	Short: "Run a named report and print it as a table",
	Long:  "Run a named report and print it as a table.\n\nReports:\n" + reportUsage(),
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, st, _, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		res, err := st.RunReport(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		return writeTable(os.Stdout, res)
	},
}

func reportUsage() string {
	var b strings.Builder
	for _, name := range report.Names() {
		arg, _ := report.Argument(name)
		if arg != "" {
			fmt.Fprintf(&b, "  %s <%s>\n", name, arg)
		} else {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	return b.String()
}

// writeTable prints a result as aligned, tab-separated columns.
func writeTable(w io.Writer, res *query.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
