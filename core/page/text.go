package page

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// objectReplacement stands in for an image in rendered text.
const objectReplacement = '\uFFFC'

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "tr": true,
}

// Text returns the rendered text of the page: markup stripped, whitespace
// collapsed, blocks separated by a blank line, <br> as a newline and one
// U+FFFC per image.
func (p *Page) Text() string {
	return renderText(p.Source())
}

func renderText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var out []rune
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimRightFunc(string(out), unicode.IsSpace)

		case html.TextToken:
			if skip > 0 {
				continue
			}
			out = appendCollapsed(out, string(z.Text()))

		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
			case tag == "br":
				out = append(trimTrailingSpaces(out), '\n')
			case tag == "img":
				out = append(out, objectReplacement)
			case blockTags[tag]:
				out = paragraphBreak(out)
			}
		}
	}
}

// appendCollapsed appends text with every whitespace run folded into one
// space and no leading space at the start of a line.
func appendCollapsed(out []rune, text string) []rune {
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && len(out) > 0 && !unicode.IsSpace(out[len(out)-1]) {
			out = append(out, ' ')
		}
		space = false
		out = append(out, r)
	}
	if space && len(out) > 0 && !unicode.IsSpace(out[len(out)-1]) {
		out = append(out, ' ')
	}
	return out
}

func trimTrailingSpaces(out []rune) []rune {
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return out
}

// paragraphBreak makes the text end with exactly one blank line, unless it is empty.
func paragraphBreak(out []rune) []rune {
	out = trimTrailingSpaces(out)
	if len(out) == 0 {
		return out
	}
	newlines := 0
	for i := len(out) - 1; i >= 0 && out[i] == '\n'; i-- {
		newlines++
	}
	for ; newlines < 2; newlines++ {
		out = append(out, '\n')
	}
	return out
}
