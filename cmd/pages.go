// Page commands: list, new, show, edit and delete.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/core/notebook"
	"github.com/gaurav-prasanna/pagenote/core/page"
)

var (
	flagBatch int

	flagShowSource bool
	flagFind       string

	flagSourceFile string
	flagImage      string
	flagTag        string
	flagStrip      bool
	flagPos        int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages, most recently modified first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		out := cmd.OutOrStdout()
		for batch := nb.Next(flagBatch); len(batch) > 0; batch = nb.Next(flagBatch) {
			for _, p := range batch {
				printSummary(out, p)
			}
		}
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new [text]",
	Short: "Create an editable page",
	Long: `New creates an empty editable page at the top of the notebook. The
optional text becomes its first paragraph; --file reads the markup from a file
("-" for stdin).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		p, err := nb.NewPage()
		if err != nil {
			return err
		}
		source, err := readSource(args)
		if err != nil {
			return err
		}
		if source != "" {
			if err := p.SetSource(source); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Name())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a page",
	Long: `Show prints the rendered text of a page. --source prints the stored
markup instead; --find lists the positions of a token in the rendered text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		p, err := nb.Page(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if flagFind != "" {
			n := p.NumOfTokens(flagFind)
			fmt.Fprintf(out, "%d occurrence(s) of %q\n", n, flagFind)
			p.SetTokenToBeFound(flagFind)
			for range n {
				fmt.Fprintln(out, p.NextPosition())
			}
			return nil
		}
		if flagShowSource {
			fmt.Fprintln(out, p.Source())
			return nil
		}
		fmt.Fprintln(out, p.Text())
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <name> [text]",
	Short: "Edit a page",
	Long: `Edit replaces the markup of an editable page with text, or with the
content of --file. --image inserts a picture after the paragraph at --pos;
--tag wraps that paragraph in an HTML tag and --strip removes its markup.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		p, err := nb.Page(args[0])
		if err != nil {
			return err
		}

		switch {
		case flagImage != "":
			err = p.AddImage(flagImage, flagPos)
		case flagTag != "":
			err = p.AddHTMLTag(flagPos, flagTag)
		case flagStrip:
			err = p.RemoveHTMLTags(flagPos)
		default:
			if len(args) < 2 && flagSourceFile == "" {
				return errors.New("nothing to write: pass text or --file")
			}
			var source string
			source, err = readSource(args[1:])
			if err == nil {
				err = p.SetSource(source)
			}
		}
		if errors.Is(err, page.ErrIllegalState) {
			return fmt.Errorf("page %s is read-only", p.Name())
		}
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>...",
	Short: "Move pages to the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		for _, name := range args {
			p, err := nb.Page(name)
			if err != nil {
				return err
			}
			p.SetSelected(true)
		}
		return nb.DeleteSelected()
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact <name>...",
	Short: "Concatenate pages into a new editable page",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		for _, name := range args {
			p, err := nb.Page(name)
			if err != nil {
				return err
			}
			p.SetSelected(true)
		}
		p, err := nb.CompactSelection()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, newCmd, showCmd, editCmd, deleteCmd, compactCmd)

	listCmd.Flags().IntVar(&flagBatch, "batch", 20, "Pages loaded per batch")

	newCmd.Flags().StringVar(&flagSourceFile, "file", "", "Read the page markup from a file (- for stdin)")

	showCmd.Flags().BoolVar(&flagShowSource, "source", false, "Print the stored markup")
	showCmd.Flags().StringVar(&flagFind, "find", "", "List the positions of a token")

	editCmd.Flags().StringVar(&flagSourceFile, "file", "", "Read the page markup from a file (- for stdin)")
	editCmd.Flags().StringVar(&flagImage, "image", "", "Insert the image at this path")
	editCmd.Flags().StringVar(&flagTag, "tag", "", "Wrap a paragraph in this HTML tag (b, i, u, h1...)")
	editCmd.Flags().BoolVar(&flagStrip, "strip", false, "Remove the markup of a paragraph")
	editCmd.Flags().IntVar(&flagPos, "pos", 0, "Text position selecting the paragraph")
}

// readSource returns the first argument wrapped in a paragraph, or the
// content of --file.
func readSource(args []string) (string, error) {
	switch {
	case flagSourceFile == "-":
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	case flagSourceFile != "":
		data, err := os.ReadFile(flagSourceFile)
		return string(data), err
	case len(args) > 0 && strings.TrimSpace(args[0]) != "":
		return "<p>" + args[0] + "</p>", nil
	default:
		return "", nil
	}
}

func printSummary(out io.Writer, p *page.Page) {
	meta := notebook.Metadata(p)
	title := meta.Title
	if title == "" {
		title = "(empty)"
	}
	fmt.Fprintf(out, "%s  %-8s  %s  %s\n", p.Name(), p.Kind(), p.LastModifiedTime().Format("2006-01-02 15:04"), title)
}
