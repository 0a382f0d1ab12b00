package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved interviews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store := storage.NewStore(viper.GetString("storage.results-dir"), nil)

		entries, err := store.List()
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), report.List(entries))
		return err
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
