package feed

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text normalization helpers shared by both transformers.

// stripTags removes HTML tags from rich text, leaving the text content
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripLineBreaks removes CR and LF so a value stays on one output line
func stripLineBreaks(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// plainText renders rich text as a single-line plain string: tags stripped,
// entities decoded, line breaks removed.
func plainText(s string) string {
	return strings.TrimSpace(stripLineBreaks(html.UnescapeString(stripTags(s))))
}

// paragraphWrap wraps double-newline separated blocks in paragraph tags,
// turning remaining single newlines into line breaks. Text already carrying
// block markup is passed through unchanged.
func paragraphWrap(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, "<p") || strings.Contains(trimmed, "<div") {
		return trimmed
	}
	normalized := strings.ReplaceAll(trimmed, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")
	var b strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(block, "\n", "<br />\n"))
		b.WriteString("</p>\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// descriptionHTML prepares a rich description for the import payload:
// paragraph-wrapped, then entities decoded to UTF-8.
func descriptionHTML(s string) string {
	return html.UnescapeString(paragraphWrap(s))
}

// seoDescriptionLimit is the destination's metadata description cap
const seoDescriptionLimit = 160

// truncateSEO shortens a description for the SEO metadata field, cutting at a
// word boundary before the limit when possible.
func truncateSEO(s string) string {
	r := []rune(s)
	if len(r) <= seoDescriptionLimit {
		return s
	}
	cut := string(r[:seoDescriptionLimit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

// handleSanitizer folds diacritics so handles stay ASCII
var handleSanitizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitizeHandle derives a URL-safe handle from a title or slug: diacritics
// folded, lowercased, non-alphanumeric runs collapsed to single hyphens.
func sanitizeHandle(s string) string {
	folded, _, err := transform.String(handleSanitizer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
