package cli

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypercollate/pkg/config"
	hcio "github.com/matzehuels/hypercollate/pkg/io"
	"github.com/matzehuels/hypercollate/pkg/witness"
	"github.com/matzehuels/hypercollate/pkg/witness/xmlwitness"
)

func (c *CLI) witnessCommand() *cobra.Command {
	var (
		configPath, sigil, root string
		asJSON                  bool
	)

	cmd := &cobra.Command{
		Use:   "witness [file]",
		Short: "Import a witness and summarize its graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("root") {
				cfg.Import.Root = root
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if sigil == "" {
				sigils, _ := sigilsFor(args, "")
				sigil = sigils[0]
			}
			g, err := readWitness(args[0], sigil, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				return hcio.WriteWitnessJSON(g, cmd.OutOrStdout())
			}
			printWitness(cmd, g)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&sigil, "sigil", "s", "", "witness sigil (default: file name)")
	cmd.Flags().StringVar(&root, "root", "", "XPath selecting the text root")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the witness graph as JSON")

	return cmd
}

// readWitness imports an XML witness, or a JSON witness graph when the
// file ends in .json. JSON witnesses carry their own sigil.
func readWitness(path, sigil string, cfg *config.Config) (*witness.Graph, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return hcio.ImportWitnessJSON(path)
	}
	return xmlwitness.ImportFile(sigil, path, cfg.ImportOptions())
}

func printWitness(cmd *cobra.Command, g *witness.Graph) {
	w := cmd.OutOrStdout()

	tokens, milestones, branches := 0, 0, 0
	for _, v := range g.ContentVertices() {
		tokens++
		if g.Token(v).IsMilestone() {
			milestones++
		}
	}
	for v := range g.Len() {
		if n := len(g.Next(witness.VertexID(v))); n > 1 {
			branches += n
		}
	}

	printKeyValue(w, "sigil", g.Sigil())
	printKeyValue(w, "tokens", strconv.Itoa(tokens))
	printKeyValue(w, "milestones", strconv.Itoa(milestones))
	printKeyValue(w, "markup", strconv.Itoa(len(g.Markups())))
	printKeyValue(w, "branches", strconv.Itoa(branches))
	printKeyValue(w, "max rank", strconv.Itoa(g.Ranking().Max()))

	var text strings.Builder
	for _, v := range g.Ranking().Order() {
		if t := g.Token(v); t != nil && len(t.BranchPath) == 1 {
			text.WriteString(t.Content)
		}
	}
	printInfo(w, "main line: %s", strings.TrimSpace(text.String()))
}
