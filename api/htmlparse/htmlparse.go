/* htmlparse.go
 * Regex and string based HTML fragment extraction with no DOM dependency. The scraped wiki's
 * template markup is not version stable and has no public schema, so a full DOM/CSS engine is
 * avoided in favour of targeted string scanning that degrades to empty results on drift.
 * Balanced block extraction tracks tag depth manually because regex alone cannot bound an
 * element whose content contains further elements of the same tag
 */

package htmlparse

import (
	"regexp"
	"strconv"
	"strings"
)

var namedEntities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   "\"",
	"&apos;":   "'",
	"&nbsp;":   " ",
	"&ndash;":  "–",
	"&mdash;":  "—",
	"&hellip;": "…",
	"&eacute;": "é",
	"&uuml;":   "ü",
}

var (
	numericEntityRe = regexp.MustCompile(`&#(x?[0-9a-fA-F]+);`)
	tagRe           = regexp.MustCompile(`(?s)<[^>]*>`)
	commentRe       = regexp.MustCompile(`(?s)<!--.*?-->`)
	rowRe           = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe          = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// DecodeEntities resolves the fixed set of named entities above plus numeric references
func DecodeEntities(text string) string {
	for from, to := range namedEntities {
		text = strings.ReplaceAll(text, from, to)
	}
	return numericEntityRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := numericEntityRe.FindStringSubmatch(m)
		body := sub[1]
		base := 10
		if strings.HasPrefix(body, "x") {
			body, base = body[1:], 16
		}
		n, err := strconv.ParseInt(body, base, 32)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
}

// StripTags removes comments and tag markup, decodes entities, collapses whitespace runs
// and trims. Each tag becomes a single space so adjacent elements with no inter-tag
// whitespace stay separate tokens
func StripTags(html string) string {
	text := commentRe.ReplaceAllString(html, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = DecodeEntities(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// ExtractBalancedBlocks finds every element whose class attribute mentions markerClass and
// returns the outer HTML of each, bounded by manual open/close depth counting
func ExtractBalancedBlocks(html, markerClass string) []string {
	var blocks []string
	from := 0
	for {
		idx := strings.Index(html[from:], markerClass)
		if idx < 0 {
			break
		}
		idx += from
		from = idx + len(markerClass)

		// Walk back to the '<' opening the element that carries the marker
		open := strings.LastIndex(html[:idx], "<")
		if open < 0 {
			continue
		}
		rest := html[open+1:]
		nameEnd := strings.IndexAny(rest, " \t\r\n>/")
		if nameEnd <= 0 {
			continue
		}
		tag := strings.ToLower(rest[:nameEnd])
		block, end := balancedElement(html, open, tag)
		if block == "" {
			continue
		}
		blocks = append(blocks, block)
		from = end
	}
	return blocks
}

// Tables returns the outer HTML of every <table> element, depth tracked since wiki templates
// nest tables inside table cells
func Tables(html string) []string {
	var tables []string
	lower := strings.ToLower(html)
	from := 0
	for {
		idx := indexOfTag(lower, "table", from)
		if idx < 0 {
			break
		}
		block, end := balancedElement(html, idx, "table")
		if block == "" {
			from = idx + len("<table")
			continue
		}
		tables = append(tables, block)
		from = end
	}
	return tables
}

// Rows returns the inner HTML of each <tr> in a table fragment
func Rows(table string) []string {
	var rows []string
	for _, m := range rowRe.FindAllStringSubmatch(table, -1) {
		rows = append(rows, m[1])
	}
	return rows
}

// Cells returns the inner HTML of each <td>/<th> in a row fragment
func Cells(row string) []string {
	var cells []string
	for _, m := range cellRe.FindAllStringSubmatch(row, -1) {
		cells = append(cells, m[1])
	}
	return cells
}

// indexOfTag finds the next opening of tag at or after from, requiring a boundary character
// so "<table" does not match inside some longer name. lower must be the lowercased document
func indexOfTag(lower, tag string, from int) int {
	token := "<" + tag
	for {
		i := strings.Index(lower[from:], token)
		if i < 0 {
			return -1
		}
		i += from
		next := i + len(token)
		if next >= len(lower) {
			return -1
		}
		switch lower[next] {
		case ' ', '\t', '\r', '\n', '>', '/':
			return i
		}
		from = next
	}
}

// balancedElement returns the outer HTML of the element whose opening tag starts at start,
// plus the index just past its close tag. Empty string when the document never closes it
func balancedElement(html string, start int, tag string) (string, int) {
	lower := strings.ToLower(html)
	closeToken := "</" + tag
	depth := 0
	i := start
	for i < len(html) {
		nextOpen := indexOfTag(lower, tag, i)
		nextClose := strings.Index(lower[i:], closeToken)
		if nextClose < 0 {
			return "", -1
		}
		nextClose += i
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			i = nextOpen + len(tag) + 1
			continue
		}
		depth--
		i = nextClose + len(closeToken)
		if depth == 0 {
			gt := strings.Index(html[nextClose:], ">")
			if gt < 0 {
				return "", -1
			}
			end := nextClose + gt + 1
			return html[start:end], end
		}
	}
	return "", -1
}
