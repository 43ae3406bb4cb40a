package notebook

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/core/normalize"
	"github.com/gaurav-prasanna/pagenote/core/output"
	"github.com/gaurav-prasanna/pagenote/core/page"
)

// Metadata describes p for the exporters. The title is the first line of
// the rendered text.
func Metadata(p *page.Page) core.PageMetadata {
	title, _, _ := strings.Cut(p.Text(), "\n")
	return core.PageMetadata{
		Name:       p.Name(),
		Title:      strings.TrimSpace(title),
		SourceURL:  p.SourceURL(),
		Editable:   p.Editable(),
		CreatedAt:  p.CreationTime().UTC().Format(time.RFC3339),
		ModifiedAt: p.LastModifiedTime().UTC().Format(time.RFC3339),
	}
}

// Export renders pages with renderer into outputDir, fanning out over
// the configured concurrency. It returns the written paths in page order.
// The first failure cancels the pages not yet started.
func (nb *Notebook) Export(ctx context.Context, pages []*page.Page, renderer core.Renderer, outputDir string) ([]string, error) {
	writer, err := output.New(outputDir)
	if err != nil {
		return nil, fmt.Errorf("initializing output writer: %w", err)
	}
	normalizer := normalize.New()

	paths := make([]string, len(pages))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(nb.cfg.Concurrency, 1))
	for i, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := exportPage(p, normalizer, renderer, writer)
			if err != nil {
				nb.log.Error().Err(err).Str("page", p.Name()).Msg("exporting page")
				return err
			}
			mu.Lock()
			paths[i] = path
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	nb.log.Info().Int("pages", len(pages)).Str("dir", writer.OutputDir).Msg("pages exported")
	return paths, nil
}

func exportPage(p *page.Page, normalizer core.Normalizer, renderer core.Renderer, writer *output.Writer) (string, error) {
	markdown, err := normalizer.Normalize(p.Source())
	if err != nil {
		return "", fmt.Errorf("normalize %s: %w", p.Name(), err)
	}
	meta := Metadata(p)
	data, err := renderer.Render(markdown, meta)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", p.Name(), err)
	}
	return writer.WritePage(p.Name(), meta.SourceURL, data, renderer.Extension())
}
