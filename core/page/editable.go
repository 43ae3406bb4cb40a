package page

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pagenote/core/storage"
)

const (
	paragraphEnd = "</p>"
	// imageRef precedes the file name of every image src in page markup.
	imageRef = "images/"
)

var (
	tagNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
	anyTagRegex  = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)
)

// SetSource replaces the page markup, notifies OnModified and deletes image
// files the new markup no longer references. It fails with ErrIllegalState
// when the page is deleted, in the recycle bin or read-only.
func (p *Page) SetSource(text string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}

	p.editMu.Lock()
	err := storage.Overwrite(p.TextPath(), text)
	p.editMu.Unlock()
	if err != nil {
		p.log.Error().Err(err).Msg("writing source")
		return err
	}

	p.notifyModified()
	p.collectImages(text)
	return nil
}

func (p *Page) checkMutable() error {
	if p.Deleted() || !p.Exists() {
		return fmt.Errorf("%w: page %s is deleted", ErrIllegalState, p.Name())
	}
	if p.InRecycleBin() {
		return fmt.Errorf("%w: page %s is in the recycle bin", ErrIllegalState, p.Name())
	}
	if !p.Editable() {
		return fmt.Errorf("%w: page %s is read-only", ErrIllegalState, p.Name())
	}
	return nil
}

// collectImages deletes every image the source no longer points at.
func (p *Page) collectImages(source string) {
	p.editMu.Lock()
	defer p.editMu.Unlock()

	entries, err := os.ReadDir(p.ImageDir())
	if err != nil {
		p.log.Error().Err(err).Msg("listing images")
		return
	}
	for _, e := range entries {
		if e.IsDir() || strings.Contains(source, imageRef+e.Name()+`"`) {
			continue
		}
		if err := os.Remove(filepath.Join(p.ImageDir(), e.Name())); err != nil {
			p.log.Error().Err(err).Str("image", e.Name()).Msg("deleting unused image")
			continue
		}
		p.log.Debug().Str("image", e.Name()).Msg("unused image deleted")
	}
}

// AddImage copies the image at path into the page and inserts it as a new
// paragraph right after the paragraph holding rendered offset pos.
func (p *Page) AddImage(path string, pos int) error {
	if err := p.checkMutable(); err != nil {
		return err
	}

	p.editMu.Lock()
	dst, err := p.newImagePath()
	if err == nil {
		err = storage.CopyFile(path, dst)
	}
	p.editMu.Unlock()
	if err != nil {
		p.log.Error().Err(err).Str("image", path).Msg("copying image")
		return err
	}

	source := p.Source()
	doc := splitParagraphs(source)
	at := doc.paragraphAt(lineOf(renderText(source), pos)) + 1
	doc.insert(at, imageTag(dst))
	return p.SetSource(doc.String())
}

// AddHTMLTag wraps the paragraph holding rendered offset pos in <tag>...</tag>.
func (p *Page) AddHTMLTag(pos int, tag string) error {
	if !tagNameRegex.MatchString(tag) {
		return fmt.Errorf("invalid html tag %q", tag)
	}
	return p.editParagraph(pos, func(par string) string {
		return "<" + tag + ">" + par + "</" + tag + ">"
	})
}

// RemoveHTMLTags strips every tag but paragraphs and images from the
// paragraph holding rendered offset pos.
func (p *Page) RemoveHTMLTags(pos int) error {
	return p.editParagraph(pos, func(par string) string {
		return anyTagRegex.ReplaceAllStringFunc(par, func(tag string) string {
			name := strings.ToLower(anyTagRegex.FindStringSubmatch(tag)[1])
			if name == "p" || name == "img" {
				return tag
			}
			return ""
		})
	})
}

func (p *Page) editParagraph(pos int, edit func(string) string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	source := p.Source()
	doc := splitParagraphs(source)
	if len(doc.pars) == 0 {
		return nil
	}
	i := doc.paragraphAt(lineOf(renderText(source), pos))
	doc.pars[i] = edit(doc.pars[i])
	return p.SetSource(doc.String())
}

// newImagePath picks a free, time-based file name in the image area.
// Callers hold editMu.
func (p *Page) newImagePath() (string, error) {
	if !p.Exists() {
		return "", fmt.Errorf("%w: page %s is deleted", ErrIllegalState, p.Name())
	}
	if err := os.MkdirAll(p.ImageDir(), 0755); err != nil {
		return "", err
	}
	n := time.Now().UnixNano()
	for {
		path := filepath.Join(p.ImageDir(), strconv.FormatInt(n, 10))
		if !storage.Exists(path) {
			return path, nil
		}
		n++
	}
}

func imageTag(path string) string {
	return `<p><img src="` + path + `"/></p>`
}

// paragraphs is page markup split on </p>; tail is whatever follows the
// last paragraph end.
type paragraphs struct {
	pars []string
	tail string
}

func splitParagraphs(source string) *paragraphs {
	parts := strings.Split(source, paragraphEnd)
	doc := &paragraphs{}
	for _, part := range parts[:len(parts)-1] {
		doc.pars = append(doc.pars, strings.ReplaceAll(part, "\n", "")+paragraphEnd)
	}
	if tail := parts[len(parts)-1]; strings.TrimSpace(tail) != "" {
		doc.tail = tail
	}
	return doc
}

func (d *paragraphs) insert(at int, par string) {
	if at < 0 {
		at = 0
	}
	if at > len(d.pars) {
		at = len(d.pars)
	}
	d.pars = append(d.pars, "")
	copy(d.pars[at+1:], d.pars[at:])
	d.pars[at] = par
}

// paragraphAt maps a rendered line number to a paragraph index. A paragraph
// covers as many lines as it has <br>-separated parts, at least two.
func (d *paragraphs) paragraphAt(line int) int {
	total := 0
	for i, par := range d.pars {
		n := len(trimTrailingEmpty(strings.Split(par, "<br>")))
		if n <= 1 {
			n = 2
		}
		total += n
		if line <= total {
			return i
		}
	}
	return len(d.pars) - 1
}

func (d *paragraphs) String() string {
	return strings.Join(d.pars, "") + d.tail
}

// lineOf returns the number of newline-delimited lines of text before rune
// offset pos, ignoring trailing empty lines.
func lineOf(text string, pos int) int {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	end := min(max(pos, 0), len(runes)-1)
	return len(trimTrailingEmpty(strings.Split(string(runes[:end]), "\n")))
}

func trimTrailingEmpty(parts []string) []string {
	for len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
