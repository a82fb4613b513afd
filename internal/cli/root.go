// Package cli implements matchctl, an offline tool for trying the keyword
// extractor, the similarity scorer and the candidate ranker from a shell.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lostfound/backend/internal/usecase"
)

var version = "dev"

// Execute is called by cmd/matchctl.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the matchctl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "matchctl",
		Short:        "Score and rank lost & found descriptions offline",
		SilenceUsage: true, // don't print usage on operational errors
		Version:      version,
	}

	root.AddCommand(newKeywordsCmd())
	root.AddCommand(newSimilarityCmd())
	root.AddCommand(newRankCmd())
	return root
}

func newKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords <text...>",
		Short: "Print the keywords extracted from a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, keyword := range usecase.ExtractKeywords(strings.Join(args, " ")) {
				fmt.Fprintln(out, keyword)
			}
			return nil
		},
	}
}

func newSimilarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "similarity <a> <b>",
		Short: "Score how much of description a is covered by description b",
		Long: `Score how much of description a is covered by description b.

The score is directional: swapping a and b can change it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printSimilarity(cmd.OutOrStdout(), args[0], args[1])
			return nil
		},
	}
}

func printSimilarity(out io.Writer, a, b string) {
	fmt.Fprintf(out, "score:      %.2f\n", usecase.Similarity(a, b))
	fmt.Fprintf(out, "keywords a: %s\n", strings.Join(usecase.ExtractKeywords(a), ", "))
	fmt.Fprintf(out, "keywords b: %s\n", strings.Join(usecase.ExtractKeywords(b), ", "))
}
