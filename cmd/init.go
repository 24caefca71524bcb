package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/config"
	"github.com/chriserin/rfl/internal/db"
	"github.com/chriserin/rfl/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize rfl in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	// config
	const cfgPath = ".rfl.yaml"
	if _, err := os.Stat(cfgPath); err == nil {
		ui.KeptLine(w, cfgPath)
	} else {
		if err := config.Default().Write(cfgPath); err != nil {
			return err
		}
		ui.NewLine(w, cfgPath)
	}

	// database
	_, err := os.Stat(config.DefaultDatabase)
	dbExists := err == nil
	sqlDB, err := db.Open(config.DefaultDatabase)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	if dbExists {
		ui.KeptLine(w, config.DefaultDatabase)
	} else {
		ui.NewLine(w, config.DefaultDatabase)
	}

	// gitignore
	msgs, err := ensureGitignore()
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func ensureGitignore() ([]string, error) {
	entry := filepath.Dir(config.DefaultDatabase) + "/"

	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
