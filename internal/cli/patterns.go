package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yildizm/msgnorm/internal/emoji"
	"github.com/yildizm/msgnorm/internal/normalize"
	"github.com/yildizm/msgnorm/internal/rollout"
)

var (
	patternsShowExpr bool
	patternsRollout  rolloutFlags
)

func newPatternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the built-in normalization patterns",
		Long: `List the patterns in precedence order: when two candidates start at the
same position, the longer one wins and ties go to the pattern listed first.

Gated patterns show whether their rollout is on for the given rollout id.

Examples:
  msgnorm patterns
  msgnorm patterns --id project-7 --expr`,
		Args: cobra.NoArgs,
		RunE: runPatterns,
	}

	cmd.Flags().BoolVar(&patternsShowExpr, "expr", false, "show the regular expression of each pattern")
	patternsRollout.register(cmd)

	return cmd
}

func runPatterns(cmd *cobra.Command, args []string) error {
	n, inv, setup, err := buildNormalizer(patternsRollout)
	if err != nil {
		return err
	}
	listPatterns(cmd.OutOrStdout(), n.Catalog(), setup, inv, patternsShowExpr)
	return nil
}

func listPatterns(w io.Writer, catalog *normalize.Catalog, setup *gateSetup, inv normalize.Invocation, showExpr bool) {
	enabled := make(map[normalize.PatternID]bool)
	for _, p := range catalog.Enabled(setup.gate, inv) {
		enabled[p.ID()] = true
	}

	fmt.Fprintf(w, "%s %d patterns, rollout id %q (bucket %d)\n\n",
		emoji.GetEmoji("pattern"), catalog.Len(), inv.ID, rollout.Bucket(inv.ID))
	fmt.Fprintf(w, "  %3s  %-20s %-14s %-9s %s\n", "#", "PATTERN", "PLACEHOLDER", "BOUNDARY", "GATE")

	for _, p := range catalog.Patterns() {
		boundary := "no"
		if p.RequiresBoundary() {
			boundary = "yes"
		}

		gate := "-"
		if key := p.Gate(); key != "" {
			state := emoji.GetEmoji("gate_off")
			if enabled[p.ID()] {
				state = emoji.GetEmoji("gate_on")
			}
			gate = fmt.Sprintf("%s %s (%d%%)", state, key, setup.cache.RolloutPercentage(key))
		}

		fmt.Fprintf(w, "  %3d  %-20s %-14s %-9s %s\n", p.Priority()+1, p.ID(), p.Label().Placeholder(), boundary, gate)
		if showExpr {
			fmt.Fprintf(w, "       %s\n", p.Expr())
		}
	}
}
