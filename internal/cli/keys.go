package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonaspleyer/biblatex"
	"github.com/jonaspleyer/biblatex/internal/logging"
)

type keysFlags struct {
	fix    bool
	all    bool
	fields []string
}

func newKeysCommand(root *rootFlags) *cobra.Command {
	flags := &keysFlags{}

	cmd := &cobra.Command{
		Use:   "keys FILE...",
		Short: "Audit cite keys for duplicates and gaps",
		Long: `Report every cite key that is empty or used by more than one entry.

With --fix the command also prints the keys it would generate: a
deterministic author+year+title+type key for empty keys (every key with
--all), and A, B, C suffixes for the duplicates that remain. Files are
never rewritten; the output is a proposal.

Examples:
  biblatex keys refs.bib                 # Audit only
  biblatex keys refs.bib --fix           # Propose generated keys
  biblatex keys refs.bib --fix --all     # Regenerate every key
  biblatex keys refs.bib --fix --fields author,year`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(cmd, args, root, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.fix, "fix", false, "propose generated keys")
	cmd.Flags().BoolVar(&flags.all, "all", false, "with --fix, regenerate every key")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil,
		"with --fix, build keys from these fields instead")

	return cmd
}

func runKeys(cmd *cobra.Command, args []string, root *rootFlags, flags *keysFlags) error {
	_, opts, styles, err := root.settings(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	logger := logging.Default()

	files, err := parseAll(args, opts)
	if err != nil {
		return err
	}

	issues := 0
	for _, f := range files {
		ok, bad := biblatex.ValidKeys(f)
		if ok {
			logger.Debug("keys valid", logging.FieldFile, f.Name())
			continue
		}
		issues += len(bad)

		fmt.Fprint(out, styles.FormatFileHeader(f.Name(), 0))
		for _, key := range slices.Sorted(maps.Keys(bad)) {
			refs := bad[key]
			display := key
			if display == "" {
				display = "<empty>"
			}
			fmt.Fprintf(out, "  %s  %s\n", styles.Failure.Render(display), occurrences(len(refs)))
			for _, ref := range refs {
				line, col := ref.File.Position(ref.Entry.Offset())
				fmt.Fprintf(out, "    %s:%d:%d: @%s\n", ref.File.Name(), line, col, ref.Entry.Type)
			}
		}

		if flags.fix {
			renames, err := biblatex.FixKeys(f, flags.fields, flags.all)
			if err != nil {
				return err
			}
			for _, r := range renames {
				old := r.Old
				if old == "" {
					old = "<empty>"
				}
				fmt.Fprintf(out, "  rename %s to %s\n", old, styles.Bold.Render(r.New))
			}
			logger.Info("proposed renames",
				logging.FieldFile, f.Name(),
				logging.FieldRenames, len(renames),
			)
		}
	}

	if issues == 0 {
		fmt.Fprint(out, styles.Success.Render("All cite keys valid")+"\n")
		return nil
	}
	return ErrIssuesFound
}

func occurrences(n int) string {
	if n == 1 {
		return "1 occurrence"
	}
	return fmt.Sprintf("%d occurrences", n)
}
