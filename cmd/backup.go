package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive every page into the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		path, err := nb.Backup()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <archive>",
	Short: "Add the pages of a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		pages, err := nb.Import(args[0])
		for _, p := range pages {
			printSummary(cmd.OutOrStdout(), p)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d page(s) imported\n", len(pages))
		return err
	},
}

func init() {
	rootCmd.AddCommand(backupCmd, importCmd)
}
