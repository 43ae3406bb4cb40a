package page

import (
	"strings"
	"unicode"
)

// tokenCursor is the in-memory state of a find-in-page session.
type tokenCursor struct {
	token     string
	positions []int
	index     int
}

// SetTokenToBeFound records the rune offset of every non-overlapping,
// case-insensitive occurrence of token in the rendered text and moves the
// cursor to the first one.
func (p *Page) SetTokenToBeFound(token string) {
	positions := tokenPositions(p.Text(), token)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.search = tokenCursor{token: token, positions: positions}
}

// NextPosition returns the offset under the cursor and then advances it.
// At the last occurrence it keeps returning that offset. It returns 0 when
// no token is set or the token does not occur.
func (p *Page) NextPosition() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := &p.search
	if c.token == "" || len(c.positions) == 0 {
		return 0
	}
	pos := c.positions[c.index]
	if c.index < len(c.positions)-1 {
		c.index++
	}
	return pos
}

// PreviousPosition returns the offset under the cursor and then moves it
// back. At the first occurrence it keeps returning that offset.
func (p *Page) PreviousPosition() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := &p.search
	if c.token == "" || len(c.positions) == 0 {
		return 0
	}
	pos := c.positions[c.index]
	if c.index > 0 {
		c.index--
	}
	return pos
}

// NumOfTokens counts the non-overlapping, case-insensitive occurrences of
// token in the rendered text.
func (p *Page) NumOfTokens(token string) int {
	return len(tokenPositions(p.Text(), token))
}

// Contains reports whether the rendered text contains every keyword,
// ignoring case.
func (p *Page) Contains(keywords []string) bool {
	text := upper(p.Text())
	for _, kw := range keywords {
		if !strings.Contains(text, upper(kw)) {
			return false
		}
	}
	return true
}

// tokenPositions returns rune offsets of match starts. Scanning resumes
// after each match, so occurrences never overlap.
func tokenPositions(text, token string) []int {
	if token == "" {
		return nil
	}
	haystack := []rune(upper(text))
	needle := []rune(upper(token))

	var positions []int
	i := 0
	for i+len(needle) <= len(haystack) {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			positions = append(positions, i)
			i += len(needle)
			continue
		}
		i++
	}
	return positions
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// upper maps rune by rune so offsets in the result match the input.
func upper(s string) string {
	return strings.Map(unicode.ToUpper, s)
}
