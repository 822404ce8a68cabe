package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonaspleyer/biblatex/internal/pretty"
)

type checkFlags struct {
	noContext bool
	noTable   bool
}

func newCheckCommand(root *rootFlags) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse bibliographies and report skipped blocks",
		Long: `Parse one or more bibliographies and report every block the parser had
to skip: malformed headers, unbalanced delimiters and blocks still open
at the end of the file. Well-formed entries always survive, so a finding
never hides the rest of the file.

Examples:
  biblatex check refs.bib              # Check a single bibliography
  biblatex check *.bib --no-context    # Findings without source excerpts
  biblatex check refs.bib --bibtex=false`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, root, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source excerpts under findings")
	cmd.Flags().BoolVar(&flags.noTable, "no-table", false, "hide the per-file summary table")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, root *rootFlags, flags *checkFlags) error {
	_, opts, styles, err := root.settings(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	files, err := parseAll(args, opts)
	if err != nil {
		return err
	}

	var stats pretty.Stats
	rows := make([]pretty.TableRow, 0, len(files))
	for _, f := range files {
		if len(f.Diagnostics) > 0 {
			fmt.Fprint(out, styles.FormatFileHeader(f.Name(), len(f.Diagnostics)))
			for _, d := range f.Diagnostics {
				fmt.Fprint(out, styles.FormatDiagnostic(f, d, !flags.noContext))
			}
		}
		stats.FilesParsed++
		stats.Entries += f.EntryCount()
		stats.Macros += len(f.Macros)
		stats.Skipped += len(f.Diagnostics)
		rows = append(rows, pretty.TableRow{
			File:    f.Name(),
			Entries: f.EntryCount(),
			Macros:  len(f.Macros),
			Skipped: len(f.Diagnostics),
		})
	}

	if !flags.noTable {
		formatter := pretty.NewTableFormatter(styles, pretty.GetTerminalWidth(os.Stdout))
		fmt.Fprint(out, formatter.FormatTable(rows))
	}
	fmt.Fprint(out, styles.FormatSummaryOneLine(stats))

	if stats.Skipped > 0 {
		return ErrIssuesFound
	}
	return nil
}
