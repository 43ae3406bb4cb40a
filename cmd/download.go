// Download commands: download and crawl.

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/core/notebook"
	"github.com/gaurav-prasanna/pagenote/core/page"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url>...",
	Short: "Save web pages as articles",
	Long: `Download fetches each URL with its images and stores it as a read-only
article. Interrupting stops the downloads that have not started yet.

Examples:
  pagenote download https://example.com/post
  pagenote download https://a.example/1 https://b.example/2 --concurrency 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownloads(cmd.Context(), cmd.OutOrStdout(), args, false)
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Save a page and every page it links to",
	Long: `Crawl fetches the given page, follows its outbound links (same host only
unless --same_domain=false, at most --max_links) and stores each one as an
article.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownloads(cmd.Context(), cmd.OutOrStdout(), args, true)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd, crawlCmd)
}

func runDownloads(ctx context.Context, out io.Writer, addresses []string, bulk bool) error {
	for _, raw := range addresses {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", raw)
		}
	}

	var mu sync.Mutex
	saved := 0
	nb, err := openNotebook(notebook.WithListener(notebook.ListenerFuncs{
		Created: func(p *page.Page) {
			mu.Lock()
			defer mu.Unlock()
			saved++
			fmt.Fprintf(out, "✓ Saved %s  %s\n", p.Name(), p.SourceURL())
		},
	}))
	if err != nil {
		return err
	}
	defer nb.Close()

	for _, address := range addresses {
		if bulk {
			nb.DownloadAll(address)
		} else {
			nb.Download(address)
		}
	}

	done := make(chan struct{})
	go func() {
		nb.WaitDownloads()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		nb.PauseDownloads()
		fmt.Fprintln(out, "Interrupted, waiting for running downloads...")
		<-done
		for _, t := range nb.Downloads() {
			fmt.Fprintf(out, "  ✗ Not downloaded: %s\n", t.Address)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%d page(s) saved\n", saved)
	return nil
}
