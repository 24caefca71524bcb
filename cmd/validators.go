package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/ui"
	"github.com/chriserin/rfl/internal/validation"
	"github.com/chriserin/rfl/internal/version"
)

var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List validation rules and which apply to the configured version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return RunValidators(cmd.OutOrStdout(), cfg.Version())
	},
}

func init() {
	rootCmd.AddCommand(validatorsCmd)
}

func RunValidators(w io.Writer, v version.Version) error {
	ui.Catalog(w, validation.Catalog(v))
	return nil
}
