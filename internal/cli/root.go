// Package cli provides the Cobra command structure for biblatex.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonaspleyer/biblatex"
	"github.com/jonaspleyer/biblatex/internal/config"
	"github.com/jonaspleyer/biblatex/internal/logging"
	"github.com/jonaspleyer/biblatex/internal/pretty"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	color      string
	bibtex     bool
}

// NewRootCommand creates the root biblatex command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "biblatex",
		Short: "Inspect and clean Bib(La)TeX bibliographies",
		Long: `biblatex parses BibTeX and BibLaTeX bibliographies without giving up
on broken input: malformed blocks are skipped and reported while every
well-formed entry is kept.

It checks files for skipped blocks, finds duplicate records across
bibliographies, and audits citation keys.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.SetLevel(flags.logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"path to config file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info",
		"log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flags.bibtex, "bibtex", true,
		"recognize the legacy @string and @preamble constructs")

	rootCmd.AddCommand(newCheckCommand(flags))
	rootCmd.AddCommand(newDedupCommand(flags))
	rootCmd.AddCommand(newKeysCommand(flags))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// settings resolves the config file against the command line; flags set on
// the line always win.
func (fl *rootFlags) settings(cmd *cobra.Command) (*config.Config, biblatex.Options, *pretty.Styles, error) {
	cfg, err := config.Load(fl.configPath)
	if err != nil {
		return nil, biblatex.Options{}, nil, err
	}

	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}

	opts := biblatex.Options{AllowBibtex: fl.bibtex}
	if !cmd.Flags().Changed("bibtex") && cfg.Bibtex != nil {
		opts.AllowBibtex = *cfg.Bibtex
	}

	color := fl.color
	if !cmd.Flags().Changed("color") && cfg.Color != "" {
		color = cfg.Color
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(color, os.Stdout))

	return cfg, opts, styles, nil
}

// parseFile opens and parses one bibliography. All file I/O of the tool
// funnels through here; the library itself never touches the filesystem.
func parseFile(name string, opts biblatex.Options) (*biblatex.File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("can't process file %s: %w", name, err)
	}
	defer fh.Close()
	return biblatex.ParseReader(fh, name, opts)
}

// parseAll parses every named bibliography, logging per-file statistics.
func parseAll(names []string, opts biblatex.Options) ([]*biblatex.File, error) {
	logger := logging.Default()
	files := make([]*biblatex.File, 0, len(names))
	for _, name := range names {
		f, err := parseFile(name, opts)
		if err != nil {
			return nil, err
		}
		logger.Debug("parsed",
			logging.FieldFile, name,
			logging.FieldEntries, f.EntryCount(),
			logging.FieldMacros, len(f.Macros),
			logging.FieldDiagnostics, len(f.Diagnostics),
		)
		files = append(files, f)
	}
	return files, nil
}
