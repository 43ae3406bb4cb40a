// Export command. Runs pages through normalize → render → write.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/core"
	"github.com/gaurav-prasanna/pagenote/core/page"
	"github.com/gaurav-prasanna/pagenote/core/render"
)

var (
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagBare      bool
	flagOutputDir string
)

var exportCmd = &cobra.Command{
	Use:   "export [name]...",
	Short: "Export pages to Markdown, JSON or PDF",
	Long: `Export converts pages to the chosen format, one file per page. Without
names every page is exported.

Examples:
  pagenote export --markdown
  pagenote export 1712345678901 --pdf --output_dir ./out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(); err != nil {
			return err
		}
		renderer := selectRenderer()

		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		pages := nb.Pages()
		if len(args) > 0 {
			pages = make([]*page.Page, 0, len(args))
			for _, name := range args {
				p, err := nb.Page(name)
				if err != nil {
					return err
				}
				pages = append(pages, p)
			}
		}

		paths, err := nb.Export(cmd.Context(), pages, renderer, flagOutputDir)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Output format flags (mutually exclusive).
	exportCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	exportCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	exportCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")
	exportCmd.Flags().BoolVar(&flagBare, "bare", false, "Omit the front matter of Markdown output")

	exportCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

// validateFormat checks that exactly one output format is chosen.
func validateFormat() error {
	formatCount := 0
	for _, set := range []bool{flagPDF, flagMarkdown, flagJSON} {
		if set {
			formatCount++
		}
	}
	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --pdf, --markdown or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if flagBare && !flagMarkdown {
		return fmt.Errorf("--bare only applies to --markdown")
	}
	return nil
}

// selectRenderer creates the Renderer matching the format flags.
func selectRenderer() core.Renderer {
	switch {
	case flagJSON:
		return render.NewJSONRenderer()
	case flagPDF:
		return render.NewPDFRenderer()
	default:
		r := render.NewMarkdownRenderer()
		r.Bare = flagBare
		return r
	}
}
