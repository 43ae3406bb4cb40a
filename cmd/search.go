package cmd

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/core/notebook"
	"github.com/gaurav-prasanna/pagenote/core/page"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "List pages containing every keyword",
	Long: `Search prints the pages whose text contains all of the keywords,
ignoring case, as they are found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var (
			mu    sync.Mutex
			found int
		)
		nb, err := openNotebook(notebook.WithListener(notebook.ListenerFuncs{
			Found: func(p *page.Page) {
				mu.Lock()
				defer mu.Unlock()
				found++
				printSummary(out, p)
			},
		}))
		if err != nil {
			return err
		}
		defer nb.Close()

		<-nb.Search(cmd.Context(), strings.Join(args, " "))

		mu.Lock()
		defer mu.Unlock()
		if found == 0 {
			fmt.Fprintln(out, "no page matches")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
