package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonaspleyer/biblatex"
	"github.com/jonaspleyer/biblatex/internal/logging"
)

type dedupFlags struct {
	fields []string
	action string
	sort   string
}

func newDedupCommand(root *rootFlags) *cobra.Command {
	flags := &dedupFlags{}

	cmd := &cobra.Command{
		Use:   "dedup FILE...",
		Short: "Find duplicate records across bibliographies",
		Long: `Index the entries of one or more bibliographies by the named fields and
report every set of records that indexes the same. Values are compared
after normalization, so brace depth, quoting and case differences do not
hide a duplicate.

An action builds a result set from the inputs: union keeps the first
occurrence of every distinct record, intersect keeps the records the
inputs have in common.

Examples:
  biblatex dedup a.bib b.bib                       # Report duplicates
  biblatex dedup a.bib b.bib --action union        # Merge, dropping dupes
  biblatex dedup a.bib b.bib --fields year,title   # Index by year+title
  biblatex dedup a.bib --fields citekey            # Index by cite key`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd, args, root, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.fields, "fields", []string{"author", "title", "year"},
		"fields forming the duplicate index")
	cmd.Flags().StringVar(&flags.action, "action", "none", "none, union or intersect")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort the result set, e.g. type,-year")

	return cmd
}

func runDedup(cmd *cobra.Command, args []string, root *rootFlags, flags *dedupFlags) error {
	cfg, opts, _, err := root.settings(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fields := flags.fields
	if !cmd.Flags().Changed("fields") && len(cfg.DedupFields) > 0 {
		fields = cfg.DedupFields
	}
	sortSpec := flags.sort
	if !cmd.Flags().Changed("sort") && cfg.SortSpec != "" {
		sortSpec = cfg.SortSpec
	}

	var action biblatex.SetAction
	switch flags.action {
	case "none":
		action = biblatex.SetNoAction
	case "union":
		action = biblatex.SetUnion
	case "intersect":
		action = biblatex.SetIntersect
	default:
		return fmt.Errorf("invalid --action %q: want none, union or intersect", flags.action)
	}

	files, err := parseAll(args, opts)
	if err != nil {
		return err
	}

	res, report, err := biblatex.Deduplicate(files, fields, action)
	if err != nil {
		return err
	}
	logger := logging.Default()
	logger.Debug("duplicate index built",
		logging.FieldFiles, len(files),
		logging.FieldDuplicates, report.DuplicateSetCount,
	)
	if err := report.Print(out); err != nil {
		return err
	}

	if res != nil {
		if sortSpec != "" {
			if err := biblatex.Sort(res, sortSpec); err != nil {
				return err
			}
		}
		logger.Info("result set built",
			logging.FieldFile, res.Name(),
			logging.FieldEntries, res.EntryCount(),
		)
		for _, e := range res.Entries {
			fmt.Fprintf(out, "@%s{%s}\n", e.Type, e.Key)
		}
	}

	if report.DuplicateSetCount > 0 {
		return ErrIssuesFound
	}
	return nil
}
