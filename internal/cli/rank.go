package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lostfound/backend/internal/domain"
	"github.com/lostfound/backend/internal/usecase"
)

// rankInput is the file read by `matchctl rank`
type rankInput struct {
	Query      domain.Item   `yaml:"query"`
	Candidates []domain.Item `yaml:"candidates"`
}

type rankOptions struct {
	file      string
	threshold float64
	workers   int
	asJSON    bool
}

func newRankCmd() *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank --file <candidates.yaml>",
		Short: "Rank candidate items against a query item",
		Long: `Rank candidate items against a query item.

The file holds a query item and a list of candidates:

  query:
    description: black leather wallet
    category: item
    color: black
  candidates:
    - id: f1
      description: black wallet with cards
      category: item`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "YAML file with query and candidates (- for stdin)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", usecase.DefaultThreshold, "Keep candidates scoring strictly above this")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel scoring workers (0 for the default)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runRank(cmd *cobra.Command, opts *rankOptions) error {
	if opts.threshold < 0 || opts.threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %v", opts.threshold)
	}

	input, err := readRankInput(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}

	matching := usecase.NewMatchingService(usecase.MatchConfig{
		Threshold: opts.threshold,
		Workers:   opts.workers,
	}, nil)

	matches, err := matching.Rank(cmd.Context(), input.Query, input.Candidates, &opts.threshold)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	printMatches(out, len(input.Candidates), matches)
	return nil
}

func readRankInput(stdin io.Reader, path string) (*rankInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var input rankInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(input.Query.Description) == "" {
		return nil, errors.New("query.description is required")
	}
	return &input, nil
}

func printMatches(out io.Writer, total int, matches []domain.MatchCandidate) {
	fmt.Fprintf(out, "Matches (%d of %d candidates):\n", len(matches), total)
	if len(matches) == 0 {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tID\tREASONS")
	for i, m := range matches {
		id := m.Item.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\n", i+1, m.MatchScore, id, strings.Join(m.MatchReasons, "; "))
	}
	tw.Flush()
}
