package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/storage"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show a saved interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return show(cmd.OutOrStdout(), args[0], format)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("format", "f", FormatText, "output format: text, json or yaml")
}

func show(w io.Writer, path, format string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("interview file: %w", err)
	}

	record, err := storage.Load(path)
	if err != nil {
		return err
	}

	return writeRecord(w, record, format)
}

func writeRecord(w io.Writer, record storage.Record, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		_, err := io.WriteString(w, report.Record(record))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(record); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
