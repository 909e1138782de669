package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"map-assistant/internal/domain"
	"map-assistant/internal/intent"
)

type parseOptions struct {
	explain bool
	workers int
}

type parseOutput struct {
	Text    string         `json:"text"`
	Command domain.Command `json:"command"`
	Rule    string         `json:"rule,omitempty"`
}

func newParseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse utterances and print one JSON command per line",
		Long: `Parse each argument as a separate utterance. With no arguments,
every non-empty line of stdin is parsed. Output order follows input order.`,
		Example: `  assistant parse "route from paris to berlin" "satellite off"
  cat utterances.txt | assistant parse --explain --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := args
			if len(lines) == 0 {
				var err error
				lines, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			return runParse(cmd.OutOrStdout(), intent.NewParser(nil), lines, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.explain, "explain", false, "include the matching rule in the output")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "number of utterances parsed concurrently")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

func runParse(w io.Writer, parser *intent.Parser, lines []string, opts parseOptions) error {
	results := make([]parseOutput, len(lines))

	var g errgroup.Group
	g.SetLimit(max(opts.workers, 1))
	for i, line := range lines {
		g.Go(func() error {
			match := parser.Explain(line)
			results[i] = parseOutput{Text: line, Command: match.Command}
			if opts.explain {
				results[i].Rule = match.Label()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
