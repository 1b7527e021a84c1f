package models

import "time"

// AuthorRef is the author block embedded in search results
type AuthorRef struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// StoryHit is one story search result
type StoryHit struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Genre       string     `json:"genre"`
	Hashtags    []string   `json:"hashtags"`
	ReadTime    int        `json:"read_time"`
	Status      Status     `json:"status"`
	Author      AuthorRef  `json:"author"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	Comments    int        `json:"comments"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserHit is one user search result
type UserHit struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio"`
	FollowersCount int       `json:"followers_count"`
	Score          float64   `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

// Suggestions are three independent autocomplete lists
type Suggestions struct {
	Stories []string `json:"stories"`
	Users   []string `json:"users"`
	Tags    []string `json:"tags"`
}

// EmptySuggestions returns suggestions with non-nil empty lists
func EmptySuggestions() *Suggestions {
	return &Suggestions{Stories: []string{}, Users: []string{}, Tags: []string{}}
}

// TagCount is a hashtag with its usage count
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AuthorCount is an author with their published story count
type AuthorCount struct {
	AuthorRef
	Stories int `json:"stories"`
}

// FilterValues are the discoverable values for search filter chips
type FilterValues struct {
	Genres      []string      `json:"genres"`
	PopularTags []TagCount    `json:"popular_tags"`
	TopAuthors  []AuthorCount `json:"top_authors"`
}
