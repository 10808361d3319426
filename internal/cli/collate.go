package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypercollate/pkg/collate"
	"github.com/matzehuels/hypercollate/pkg/collation"
	"github.com/matzehuels/hypercollate/pkg/config"
	hcio "github.com/matzehuels/hypercollate/pkg/io"
	"github.com/matzehuels/hypercollate/pkg/observability"
	"github.com/matzehuels/hypercollate/pkg/render/dot"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// collateOpts holds the command-line flags for the collate command.
// Flags left unset fall back to the config file, then to the defaults.
type collateOpts struct {
	configPath    string
	sigils        string        // comma-separated, one per file
	format        string        // json, dot or svg
	output        string        // output file; stdout when empty
	root          string        // XPath of the witness text root
	noCoalesce    bool          // keep one node per token
	maxExpansions int           // search cap per witness, 0 = unbounded
	timeout       time.Duration // search deadline per witness
	detailed      bool          // rank and branch paths in DOT/SVG labels
}

func (c *CLI) collateCommand() *cobra.Command {
	var opts collateOpts

	cmd := &cobra.Command{
		Use:   "collate [files...]",
		Short: "Collate two or more witnesses into a variant graph",
		Long: `Collate aligns witnesses in the given order. XML files are tokenized into
words; files ending in .json are read as pre-built witness graphs.

Sigils default to the file names without extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return runCollate(cmd.Context(), cmd, args, cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&opts.sigils, "sigil", "s", "", "witness sigils, one per file (comma-separated)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", config.FormatJSON, "output format: json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.root, "root", "", "XPath selecting the text root of XML witnesses")
	cmd.Flags().BoolVar(&opts.noCoalesce, "no-coalesce", false, "keep one node per token")
	cmd.Flags().IntVar(&opts.maxExpansions, "max-expansions", collate.DefaultMaxExpansions, "search states per witness (0 = unbounded)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "search deadline per witness (0 = none)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show ranks and branch paths (dot, svg)")

	return cmd
}

// apply overrides cfg with every flag set on the command line.
func (o *collateOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		if err := validateFormat(o.format); err != nil {
			return err
		}
		cfg.Output.Format = o.format
	}
	if flags.Changed("root") {
		cfg.Import.Root = o.root
	}
	if flags.Changed("no-coalesce") {
		cfg.Output.Coalesce = !o.noCoalesce
	}
	if flags.Changed("max-expansions") {
		cfg.Search.MaxExpansions = o.maxExpansions
	}
	if flags.Changed("timeout") {
		cfg.Search.Timeout = config.Duration(o.timeout)
	}
	return cfg.Validate()
}

func runCollate(ctx context.Context, cmd *cobra.Command, files []string, cfg *config.Config, opts *collateOpts) error {
	logger := loggerFromContext(ctx)
	status := cmd.ErrOrStderr()

	sigils, err := sigilsFor(files, opts.sigils)
	if err != nil {
		return err
	}
	witnesses := make([]*witness.Graph, len(files))
	for i, f := range files {
		if witnesses[i], err = readWitness(f, sigils[i], cfg); err != nil {
			return err
		}
		logger.Debug("Imported witness", "sigil", witnesses[i].Sigil(), "file", f, "tokens", len(witnesses[i].ContentVertices()))
	}

	prog := newProgress(logger)
	spin := newSpinner(ctx, status, "Collating...")
	spin.Start()

	copts := cfg.CollateOptions()
	copts.Logger = logger
	copts.Hooks = observability.Multi(observability.NewLogHooks(logger), spinnerHooks{s: spin})

	res, err := collate.Collate(ctx, copts, witnesses...)
	if err != nil {
		spin.StopWithError("Collation failed")
		return err
	}
	spin.Stop()
	prog.done("Collated", "witnesses", len(witnesses), "run", res.RunID)

	for _, v := range collate.Verify(res) {
		printWarning(status, "%s: %s", v.Property, v.Detail)
	}

	data, err := encodeGraph(ctx, res.Graph, cfg.Output.Format, opts.detailed)
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	printSuccess(status, "Collated %d witnesses", len(witnesses))
	printFile(status, opts.output)
	printStats(status,
		stat{res.Graph.Len(), "nodes"},
		stat{len(res.Graph.Edges()), "edges"},
		stat{chosen(res), "aligned tokens"},
	)
	return nil
}

func chosen(res *collate.Result) int {
	n := 0
	for _, m := range res.Merges {
		n += len(m.Chosen)
	}
	return n
}

// encodeGraph renders g in the requested output format.
func encodeGraph(ctx context.Context, g *collation.Graph, format string, detailed bool) ([]byte, error) {
	switch format {
	case config.FormatJSON:
		var buf bytes.Buffer
		if err := hcio.WriteJSON(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case config.FormatDOT:
		return []byte(dot.ToDOT(g, dot.Options{Detailed: detailed})), nil
	case config.FormatSVG:
		return dot.RenderSVG(ctx, dot.ToDOT(g, dot.Options{Detailed: detailed}))
	}
	return nil, validateFormat(format)
}

