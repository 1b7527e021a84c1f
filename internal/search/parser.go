// Package search turns a free-text query with embedded directives into a typed
// filter and compiles that filter into SQL clauses over stories and users.
package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/storyhub-api/internal/models"
)

// DateRange is a half-open publication window [From, To)
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Filter is the parsed form of a search query
type Filter struct {
	Text      string     `json:"text,omitempty"`
	Genre     string     `json:"genre,omitempty"`
	Author    string     `json:"author,omitempty"`
	Title     string     `json:"title,omitempty"`
	Hashtags  []string   `json:"hashtags,omitempty"`
	DateRange *DateRange `json:"date_range,omitempty"`
}

// IsEmpty reports whether the filter restricts nothing
func (f Filter) IsEmpty() bool {
	return f.Text == "" && f.Genre == "" && f.Author == "" && f.Title == "" &&
		len(f.Hashtags) == 0 && f.DateRange == nil
}

var dateRe = regexp.MustCompile(`^(\d{4})(?:-(\d{2}))?$`)

// ParseQuery extracts genre:, author:, title:, #tag and date: directives from q.
// Whatever is not recognized becomes the free-text component.
// title: consumes the rest of the query.
func ParseQuery(q string) Filter {
	var (
		f    Filter
		text []string
		seen = make(map[string]bool)
	)

	tokens := strings.Fields(q)
	for i, tok := range tokens {
		key, value, hasKey := splitDirective(tok)

		switch {
		case hasKey && key == "title":
			rest := append([]string{value}, tokens[i+1:]...)
			f.Title = strings.TrimSpace(strings.Join(rest, " "))
			f.Text = strings.Join(text, " ")
			return f

		case hasKey && key == "genre" && value != "":
			f.Genre = value
			continue

		case hasKey && key == "author" && value != "":
			f.Author = value
			continue

		case hasKey && key == "date":
			if r, ok := parseDateRange(value); ok {
				f.DateRange = r
				continue
			}

		case strings.HasPrefix(tok, "#"):
			if tag := models.NormalizeHashtag(tok); tag != "" {
				if !seen[tag] {
					seen[tag] = true
					f.Hashtags = append(f.Hashtags, tag)
				}
				continue
			}
		}

		text = append(text, tok)
	}

	f.Text = strings.Join(text, " ")
	return f
}

// splitDirective splits "key:value" with a case-insensitive key
func splitDirective(tok string) (key, value string, ok bool) {
	idx := strings.IndexByte(tok, ':')
	if idx <= 0 {
		return "", "", false
	}
	key = strings.ToLower(tok[:idx])
	switch key {
	case "genre", "author", "title", "date":
		return key, tok[idx+1:], true
	}
	return "", "", false
}

// parseDateRange accepts YYYY or YYYY-MM
func parseDateRange(value string) (*DateRange, bool) {
	m := dateRe.FindStringSubmatch(value)
	if m == nil {
		return nil, false
	}
	year, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &DateRange{From: from, To: from.AddDate(1, 0, 0)}, true
	}
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return nil, false
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return &DateRange{From: from, To: from.AddDate(0, 1, 0)}, true
}
