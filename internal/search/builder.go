package search

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/storyhub-api/internal/models"
)

// SortMode orders search results
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortNewest    SortMode = "newest"
	SortOldest    SortMode = "oldest"
	SortPopular   SortMode = "popular"
	SortTrending  SortMode = "trending"
	SortFollowers SortMode = "followers"
	SortUsername  SortMode = "username"
)

// storyOrder is keyed by sort mode. Every ordering ends with the primary key
// so equal rows come back in the same order on every call.
var storyOrder = map[SortMode]string{
	SortRelevance: "s.views DESC, s.likes DESC, s.published_at DESC NULLS LAST, s.id",
	SortNewest:    "s.published_at DESC NULLS LAST, s.created_at DESC, s.id",
	SortOldest:    "s.published_at ASC NULLS LAST, s.created_at ASC, s.id",
	SortPopular:   "s.likes DESC, s.views DESC, s.id",
	SortTrending:  "(0.1 * s.views + 2 * s.likes + 3 * s.comments) DESC, s.published_at DESC NULLS LAST, s.id",
}

var userOrder = map[SortMode]string{
	SortRelevance: "score DESC, u.followers_count DESC, u.id",
	SortFollowers: "u.followers_count DESC, u.id",
	SortNewest:    "u.created_at DESC, u.id",
	SortUsername:  "u.username ASC, u.id",
}

// StorySort resolves a story sort mode, defaulting to relevance
func StorySort(s string) SortMode {
	mode := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := storyOrder[mode]; ok {
		return mode
	}
	return SortRelevance
}

// UserSort resolves a user sort mode, defaulting to relevance
func UserSort(s string) SortMode {
	mode := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := userOrder[mode]; ok {
		return mode
	}
	return SortRelevance
}

// Clause is a compiled WHERE / ORDER BY pair with its positional arguments.
// Callers append LIMIT and OFFSET with NextArg.
type Clause struct {
	Where   string
	OrderBy string
	Score   string
	Args    []interface{}
}

// NextArg appends v and returns its placeholder
func (c *Clause) NextArg(v interface{}) string {
	c.Args = append(c.Args, v)
	return fmt.Sprintf("$%d", len(c.Args))
}

// StoryQuery describes one story search
type StoryQuery struct {
	Filter   Filter
	Statuses []models.Status
	Sort     SortMode
}

// BuildStoryClause compiles q against stories aliased s joined to users aliased u
func BuildStoryClause(q StoryQuery) *Clause {
	c := &Clause{}
	var conds []string

	statuses := q.Statuses
	if len(statuses) == 0 {
		statuses = []models.Status{models.StatusPublished}
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	conds = append(conds, fmt.Sprintf("s.status = ANY(%s::text[])", c.NextArg(pq.Array(names))))

	f := q.Filter
	if f.Text != "" {
		p := c.NextArg(Contains(f.Text))
		conds = append(conds, fmt.Sprintf("(s.title ILIKE %[1]s OR s.excerpt ILIKE %[1]s OR s.content ILIKE %[1]s)", p))
	}
	if f.Title != "" {
		conds = append(conds, "s.title ILIKE "+c.NextArg(Contains(f.Title)))
	}
	if f.Genre != "" {
		conds = append(conds, "s.genre ILIKE "+c.NextArg(Contains(f.Genre)))
	}
	if f.Author != "" {
		p := c.NextArg(Contains(f.Author))
		conds = append(conds, fmt.Sprintf("(u.username ILIKE %[1]s OR u.display_name ILIKE %[1]s)", p))
	}
	if len(f.Hashtags) > 0 {
		conds = append(conds, fmt.Sprintf("s.hashtags @> %s::text[]", c.NextArg(pq.Array(f.Hashtags))))
	}
	if f.DateRange != nil {
		from := c.NextArg(f.DateRange.From)
		to := c.NextArg(f.DateRange.To)
		conds = append(conds, fmt.Sprintf("s.published_at >= %s AND s.published_at < %s", from, to))
	}

	c.Where = strings.Join(conds, " AND ")
	order, ok := storyOrder[q.Sort]
	if !ok {
		order = storyOrder[SortRelevance]
	}
	c.OrderBy = order
	return c
}

// BuildUserClause compiles a user search over users aliased u.
// Score is 10 for a username match, 5 for a display name match, plus 0.01 per follower.
func BuildUserClause(text string, sort SortMode) *Clause {
	c := &Clause{}
	p := c.NextArg(Contains(text))

	c.Where = fmt.Sprintf("(u.username ILIKE %[1]s OR u.display_name ILIKE %[1]s)", p)
	c.Score = fmt.Sprintf(
		"(CASE WHEN u.username ILIKE %[1]s THEN 10 ELSE 0 END + CASE WHEN u.display_name ILIKE %[1]s THEN 5 ELSE 0 END + 0.01 * u.followers_count)",
		p,
	)
	order, ok := userOrder[sort]
	if !ok {
		order = userOrder[SortRelevance]
	}
	c.OrderBy = order
	return c
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards in s
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Contains returns an ILIKE pattern matching s anywhere
func Contains(s string) string {
	return "%" + EscapeLike(s) + "%"
}

// MaxPage bounds page so the row offset stays well inside int range
const MaxPage = 10000

// Page clamps page and limit: page is kept within 1..MaxPage, limit falls back
// to def when unset and never exceeds max.
func Page(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// Offset returns the row offset of page
func Offset(page, limit int) int {
	return (page - 1) * limit
}
