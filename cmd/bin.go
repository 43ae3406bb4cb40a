// Recycle bin commands: bin, restore and empty-bin.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/core/page"
)

var binCmd = &cobra.Command{
	Use:   "bin",
	Short: "List the recycle bin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		pages := nb.RecycleBin()
		page.SortByLastModified(pages)
		for _, p := range pages {
			printSummary(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <name>...",
	Short: "Move pages back from the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		var pages []*page.Page
		for _, name := range args {
			p, err := nb.RecycledPage(name)
			if err != nil {
				return err
			}
			pages = append(pages, p)
		}
		restored, err := nb.Restore(pages...)
		for _, p := range restored {
			fmt.Fprintln(cmd.OutOrStdout(), p.Name())
		}
		return err
	},
}

var emptyBinCmd = &cobra.Command{
	Use:   "empty-bin",
	Short: "Erase every page in the recycle bin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		n := len(nb.RecycleBin())
		if err := nb.EmptyRecycleBin(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d page(s) erased\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(binCmd, restoreCmd, emptyBinCmd)
}
