package search

import (
	"math"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-api/internal/models"
)

func TestBuildStoryClause_PublishedOnlyByDefault(t *testing.T) {
	c := BuildStoryClause(StoryQuery{})

	assert.Equal(t, "s.status = ANY($1::text[])", c.Where)
	require.Len(t, c.Args, 1)
	assert.Equal(t, pq.Array([]string{"published"}), c.Args[0])
	assert.Equal(t, storyOrder[SortRelevance], c.OrderBy)
}

func TestBuildStoryClause_AllDirectives(t *testing.T) {
	f := ParseQuery("dragons genre:Fantasy #epic author:jdoe date:2024-03 title:Fire 100%")
	c := BuildStoryClause(StoryQuery{
		Filter:   f,
		Statuses: []models.Status{models.StatusPublished, models.StatusDraft},
		Sort:     SortTrending,
	})

	assert.Equal(t,
		"s.status = ANY($1::text[])"+
			" AND (s.title ILIKE $2 OR s.excerpt ILIKE $2 OR s.content ILIKE $2)"+
			" AND s.title ILIKE $3"+
			" AND s.genre ILIKE $4"+
			" AND (u.username ILIKE $5 OR u.display_name ILIKE $5)"+
			" AND s.hashtags @> $6::text[]"+
			" AND s.published_at >= $7 AND s.published_at < $8",
		c.Where,
	)
	require.Len(t, c.Args, 8)
	assert.Equal(t, pq.Array([]string{"published", "draft"}), c.Args[0])
	assert.Equal(t, "%dragons%", c.Args[1])
	assert.Equal(t, `%Fire 100\%%`, c.Args[2])
	assert.Equal(t, "%Fantasy%", c.Args[3])
	assert.Equal(t, "%jdoe%", c.Args[4])
	assert.Equal(t, pq.Array([]string{"#epic"}), c.Args[5])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Args[6])
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), c.Args[7])
	assert.Contains(t, c.OrderBy, "0.1 * s.views + 2 * s.likes + 3 * s.comments")
}

func TestBuildStoryClause_NextArgContinuesNumbering(t *testing.T) {
	c := BuildStoryClause(StoryQuery{Filter: Filter{Genre: "Drama"}})

	assert.Equal(t, "$3", c.NextArg(10))
	assert.Equal(t, "$4", c.NextArg(0))
	assert.Len(t, c.Args, 4)
}

func TestSortOrdersEndWithPrimaryKey(t *testing.T) {
	for mode, order := range storyOrder {
		assert.Regexp(t, `s\.id$`, order, mode)
	}
	for mode, order := range userOrder {
		assert.Regexp(t, `u\.id$`, order, mode)
	}
}

func TestStorySort(t *testing.T) {
	assert.Equal(t, SortNewest, StorySort("Newest"))
	assert.Equal(t, SortTrending, StorySort(" trending "))
	assert.Equal(t, SortRelevance, StorySort(""))
	assert.Equal(t, SortRelevance, StorySort("followers"))
}

func TestUserSort(t *testing.T) {
	assert.Equal(t, SortFollowers, UserSort("followers"))
	assert.Equal(t, SortUsername, UserSort("USERNAME"))
	assert.Equal(t, SortRelevance, UserSort("popular"))
}

func TestBuildUserClause(t *testing.T) {
	c := BuildUserClause("jo_hn", SortRelevance)

	assert.Equal(t, "(u.username ILIKE $1 OR u.display_name ILIKE $1)", c.Where)
	assert.Equal(t, []interface{}{`%jo\_hn%`}, c.Args)
	assert.Contains(t, c.Score, "THEN 10")
	assert.Contains(t, c.Score, "THEN 5")
	assert.Contains(t, c.Score, "0.01 * u.followers_count")
	assert.Equal(t, "score DESC, u.followers_count DESC, u.id", c.OrderBy)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, EscapeLike(`50% off_now \o/`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}

func TestPage(t *testing.T) {
	tests := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"clamped to max", 2, 1000, 2, 100},
		{"exact max", 1, 100, 1, 100},
		{"minimum", 5, 1, 5, 1},
		{"page capped", math.MaxInt, 100, MaxPage, 100},
		{"last page", MaxPage, 10, MaxPage, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := Page(tt.page, tt.limit, 10, 100)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(1, 25))

	page, limit := Page(math.MaxInt, 1000, 10, 100)
	assert.Positive(t, Offset(page, limit))
}

func BenchmarkBuildStoryClause(b *testing.B) {
	f := ParseQuery("dragons genre:Fantasy #epic author:jdoe date:2024-03")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		BuildStoryClause(StoryQuery{Filter: f, Sort: SortPopular})
	}
}
