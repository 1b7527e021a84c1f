package models

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// ExcerptLength is the maximum generated excerpt length in runes
	ExcerptLength = 250
	// WordsPerMinute drives the read time estimate
	WordsPerMinute = 200
)

var (
	htmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9]+`)
	hashtagCleanRe = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)
)

// Slugify lowercases s and joins its alphanumeric runs with hyphens
func Slugify(s string) string {
	slug := slugInvalidRe.ReplaceAllString(stripAccents(strings.ToLower(s)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	return slug
}

// NewSlug derives a unique-per-millisecond slug from a title
func NewSlug(title string, now time.Time) string {
	base := Slugify(title)
	if base == "" {
		base = "story"
	}
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// StripHTML removes tags, unescapes entities and collapses whitespace
func StripHTML(s string) string {
	text := htmlTagRegex.ReplaceAllString(s, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// MakeExcerpt returns the first max runes of the plain-text content,
// cut back to a word boundary and suffixed with "..." when truncated.
func MakeExcerpt(content string, max int) string {
	text := StripHTML(content)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// ReadTime estimates reading minutes, never less than one
func ReadTime(content string) int {
	words := len(strings.Fields(StripHTML(content)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// NormalizeHashtag lowercases a tag and ensures the leading '#'.
// It returns "" when nothing usable remains.
func NormalizeHashtag(tag string) string {
	tag = strings.TrimLeft(strings.TrimSpace(strings.ToLower(tag)), "#")
	tag = hashtagCleanRe.ReplaceAllString(tag, "")
	if tag == "" {
		return ""
	}
	return "#" + tag
}

// NormalizeHashtags normalizes and de-duplicates tags, keeping first-seen order
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		n := NormalizeHashtag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func stripAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		if mapped, ok := accentMap[r]; ok {
			b.WriteString(mapped)
			continue
		}
		b.WriteRune(' ')
	}
	return b.String()
}

var accentMap = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'ö': "o", 'õ': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ñ': "n", 'ç': "c", 'ß': "ss",
}
