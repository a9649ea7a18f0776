package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yildizm/msgnorm/internal/ingest"
	"github.com/yildizm/msgnorm/internal/normalize"
)

var (
	normalizeExplain bool
	normalizeRollout rolloutFlags
)

func newNormalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [message...]",
		Short: "Normalize messages into templates",
		Long: `Replace the variable parts of each message with typed placeholders such as
<int>, <ip>, <uuid> or <date> and print one template per line.

Each argument is a message. Without arguments, messages are read from stdin,
one per line.

Examples:
  msgnorm normalize "connection to 10.0.0.1 refused after 3 retries"
  msgnorm normalize --explain "user 42 logged in"
  msgnorm normalize --id project-7 --rollout grouping.experiments.parameterization.uniq_id=100 < messages.txt`,
		RunE: runNormalize,
	}

	cmd.Flags().BoolVar(&normalizeExplain, "explain", false, "print the matched spans as JSON")
	normalizeRollout.register(cmd)

	return cmd
}

func runNormalize(cmd *cobra.Command, args []string) error {
	n, inv, _, err := buildNormalizer(normalizeRollout)
	if err != nil {
		return err
	}

	messages := args
	if len(messages) == 0 {
		cfg, err := GetGlobalConfig()
		if err != nil {
			return err
		}
		messages, err = ingest.ReadLines(cmd.InOrStdin(), cfg.Input.MaxLines, cfg.Input.MaxLineLength)
		if err != nil {
			return fmt.Errorf("failed to read messages: %w", err)
		}
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Normalizing %d messages (rollout id %q)\n", len(messages), inv.ID)
	}

	return writeNormalized(cmd.OutOrStdout(), n, inv, messages, normalizeExplain)
}

func writeNormalized(w io.Writer, n *normalize.Normalizer, inv normalize.Invocation, messages []string, explain bool) error {
	if explain {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, msg := range messages {
			if err := enc.Encode(n.Explain(msg, inv)); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
		}
		return nil
	}

	for _, msg := range messages {
		if _, err := fmt.Fprintln(w, n.Normalize(msg, inv)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
