package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/config"
	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/parser"
	"github.com/chriserin/rfl/internal/ui"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print every token of a file with its type tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return RunTokens(cmd.OutOrStdout(), cfg, logger, args[0])
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the document tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return RunTree(cmd.OutOrStdout(), cfg, logger, args[0])
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(treeCmd)
}

func parseFile(cfg *config.Config, logger *slog.Logger, path string) (*model.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parser.Parse(path, content, parser.Options{Version: cfg.Version(), Logger: logger})
}

func RunTokens(w io.Writer, cfg *config.Config, logger *slog.Logger, path string) error {
	f, err := parseFile(cfg, logger, path)
	if err != nil {
		return err
	}
	ui.Tokens(w, f)
	return nil
}

func RunTree(w io.Writer, cfg *config.Config, logger *slog.Logger, path string) error {
	f, err := parseFile(cfg, logger, path)
	if err != nil {
		return err
	}
	ui.Tree(w, f)
	return nil
}
