package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/search"
)

// Store is the in-memory data shared by the mock repositories
type Store struct {
	mu         sync.Mutex
	Stories    map[string]*models.Story
	History    map[string][]models.ModerationEntry
	Users      map[string]*models.User
	Comments   map[string]*models.Comment
	Categories map[string]*models.Category
	Likes      map[string]map[string]bool
	Saves      map[string]map[string]bool

	// Err, when set, is returned by every repository call
	Err error

	// LastStoryQuery records the most recent story search
	LastStoryQuery  search.StoryQuery
	LastLimit       int
	LastOffset      int
	HistoryLookups  int
	nextHistoryID   int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Stories:    make(map[string]*models.Story),
		History:    make(map[string][]models.ModerationEntry),
		Users:      make(map[string]*models.User),
		Comments:   make(map[string]*models.Comment),
		Categories: make(map[string]*models.Category),
		Likes:      make(map[string]map[string]bool),
		Saves:      make(map[string]map[string]bool),
	}
}

// NewRepositories returns mock repositories over a fresh store
func NewRepositories() (*repository.Repositories, *Store) {
	s := NewStore()
	return &repository.Repositories{
		Story:      &MockStoryRepository{s},
		Moderation: &MockModerationRepository{s},
		User:       &MockUserRepository{s},
		Comment:    &MockCommentRepository{s},
		Category:   &MockCategoryRepository{s},
		Search:     &MockSearchRepository{s},
	}, s
}

// PutStory stores a copy of story
func (s *Store) PutStory(story *models.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *story
	s.Stories[story.ID] = &c
}

// Story returns a copy of the stored story
func (s *Store) Story(id string) *models.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.Stories[id]; ok {
		c := *st
		return &c
	}
	return nil
}

// PutUser stores a copy of user
func (s *Store) PutUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *user
	s.Users[user.ID] = &c
}

// Entries returns a copy of a story's history
func (s *Store) Entries(storyID string) []models.ModerationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ModerationEntry(nil), s.History[storyID]...)
}

func (s *Store) recount(storyID string) {
	st, ok := s.Stories[storyID]
	if !ok {
		return
	}
	st.Likes = len(s.Likes[storyID])
	st.Saves = len(s.Saves[storyID])
	n := 0
	for _, c := range s.Comments {
		if c.StoryID == storyID && !c.Hidden {
			n++
		}
	}
	st.Comments = n
}

// MockStoryRepository is a mock implementation of StoryRepository
type MockStoryRepository struct{ s *Store }

func (m *MockStoryRepository) Create(ctx context.Context, story *models.Story) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	c := *story
	m.s.Stories[story.ID] = &c
	return nil
}

func (m *MockStoryRepository) Update(ctx context.Context, story *models.Story) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	st, ok := m.s.Stories[story.ID]
	if !ok {
		return nil
	}
	st.Slug, st.Title, st.Content, st.Excerpt = story.Slug, story.Title, story.Content, story.Excerpt
	st.ReadTime, st.Genre, st.Hashtags, st.Tags = story.ReadTime, story.Genre, story.Hashtags, story.Tags
	st.CategoryID, st.UpdatedAt = story.CategoryID, story.UpdatedAt
	return nil
}

func (m *MockStoryRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	if err := m.err(); err != nil {
		return nil, err
	}
	return m.s.Story(id), nil
}

func (m *MockStoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Story, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	for _, st := range m.s.Stories {
		if st.Slug == slug {
			c := *st
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockStoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	if _, ok := m.s.Stories[id]; !ok {
		return false, nil
	}
	delete(m.s.Stories, id)
	delete(m.s.History, id)
	delete(m.s.Likes, id)
	delete(m.s.Saves, id)
	for cid, c := range m.s.Comments {
		if c.StoryID == id {
			delete(m.s.Comments, cid)
		}
	}
	return true, nil
}

func (m *MockStoryRepository) IncrementViews(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if st, ok := m.s.Stories[id]; ok {
		st.Views++
	}
	return nil
}

func (m *MockStoryRepository) IncrementShares(ctx context.Context, id string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return 0, m.s.Err
	}
	st, ok := m.s.Stories[id]
	if !ok {
		return 0, nil
	}
	st.Shares++
	return st.Shares, nil
}

func (m *MockStoryRepository) ToggleLike(ctx context.Context, storyID, userID string) (*models.Engagement, error) {
	return m.toggle(m.s.Likes, storyID, userID, func(st *models.Story) int { return st.Likes })
}

func (m *MockStoryRepository) ToggleSave(ctx context.Context, storyID, userID string) (*models.Engagement, error) {
	return m.toggle(m.s.Saves, storyID, userID, func(st *models.Story) int { return st.Saves })
}

func (m *MockStoryRepository) toggle(rel map[string]map[string]bool, storyID, userID string, count func(*models.Story) int) (*models.Engagement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	st, ok := m.s.Stories[storyID]
	if !ok {
		return nil, nil
	}
	if rel[storyID] == nil {
		rel[storyID] = make(map[string]bool)
	}
	active := !rel[storyID][userID]
	if active {
		rel[storyID][userID] = true
	} else {
		delete(rel[storyID], userID)
	}
	m.s.recount(storyID)
	return &models.Engagement{StoryID: storyID, Active: active, Count: count(st)}, nil
}

func (m *MockStoryRepository) StreamAll(ctx context.Context, filter repository.ExportFilter, callback func(*models.Story) error) error {
	m.s.mu.Lock()
	if m.s.Err != nil {
		m.s.mu.Unlock()
		return m.s.Err
	}
	stories := make([]*models.Story, 0, len(m.s.Stories))
	for _, st := range m.s.Stories {
		if filter.Status != nil && st.Status != *filter.Status {
			continue
		}
		c := *st
		stories = append(stories, &c)
	}
	m.s.mu.Unlock()

	sort.Slice(stories, func(i, j int) bool {
		if !stories[i].CreatedAt.Equal(stories[j].CreatedAt) {
			return stories[i].CreatedAt.Before(stories[j].CreatedAt)
		}
		return stories[i].ID < stories[j].ID
	})
	for _, st := range stories {
		if err := callback(st); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockStoryRepository) err() error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.Err
}

// MockModerationRepository is a mock implementation of ModerationRepository
type MockModerationRepository struct{ s *Store }

func (m *MockModerationRepository) Apply(ctx context.Context, t *models.Transition) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	st, ok := m.s.Stories[t.Story.ID]
	if !ok || st.Status != t.Expected {
		return apperror.Conflict("story status changed while it was being moderated (expected %s)", t.Expected)
	}

	st.Status = t.Story.Status
	st.PublishedAt = t.Story.PublishedAt
	st.RejectionFeedback = t.Story.RejectionFeedback
	st.LastModeratedBy = t.Story.LastModeratedBy
	st.LastModeratedAt = t.Story.LastModeratedAt
	st.SubmittedAt = t.Story.SubmittedAt
	st.UpdatedAt = t.Story.UpdatedAt

	m.s.nextHistoryID++
	t.Entry.ID = m.s.nextHistoryID
	m.s.History[st.ID] = append(m.s.History[st.ID], *t.Entry)
	return nil
}

func (m *MockModerationRepository) History(ctx context.Context, storyID string) ([]models.ModerationEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	m.s.HistoryLookups++
	return append(make([]models.ModerationEntry, 0), m.s.History[storyID]...), nil
}

func (m *MockModerationRepository) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	counts := make(map[models.Status]int)
	for _, st := range models.AllStatuses {
		counts[st] = 0
	}
	for _, st := range m.s.Stories {
		counts[st.Status]++
	}
	return counts, nil
}

func (m *MockModerationRepository) CountPendingBefore(ctx context.Context, before time.Time) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, st := range m.s.Stories {
		entered := st.CreatedAt
		if st.SubmittedAt != nil {
			entered = *st.SubmittedAt
		}
		if st.Status == models.StatusPending && entered.Before(before) {
			n++
		}
	}
	return n, m.s.Err
}

func (m *MockModerationRepository) CountModeratedSince(ctx context.Context, since time.Time) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, st := range m.s.Stories {
		if st.LastModeratedAt != nil && !st.LastModeratedAt.Before(since) {
			n++
		}
	}
	return n, m.s.Err
}

func (m *MockModerationRepository) Queue(ctx context.Context, status models.Status, limit, offset int) ([]*models.Story, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, 0, m.s.Err
	}
	var all []*models.Story
	for _, st := range m.s.Stories {
		if st.Status == status {
			c := *st
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.Before(all[j].UpdatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return window(all, limit, offset), len(all), nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct{ s *Store }

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	c := *user
	m.s.Users[user.ID] = &c
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	if u, ok := m.s.Users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := m.s.Users[id]; ok {
			c := *u
			out[id] = &c
		}
	}
	return out, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	if _, ok := m.s.Users[id]; !ok {
		return false, nil
	}
	delete(m.s.Users, id)

	for sid, st := range m.s.Stories {
		if st.AuthorID == id {
			delete(m.s.Stories, sid)
		}
	}
	for cid, c := range m.s.Comments {
		if c.AuthorID == id {
			delete(m.s.Comments, cid)
		}
	}
	for sid := range m.s.Stories {
		delete(m.s.Likes[sid], id)
		delete(m.s.Saves[sid], id)
		m.s.recount(sid)
	}
	return true, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.Users), m.s.Err
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct{ s *Store }

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	c := *comment
	m.s.Comments[comment.ID] = &c
	m.s.recount(comment.StoryID)
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	if c, ok := m.s.Comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockCommentRepository) ListByStory(ctx context.Context, storyID string, includeHidden bool) ([]models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	out := make([]models.Comment, 0)
	for _, c := range m.s.Comments {
		if c.StoryID == storyID && (includeHidden || !c.Hidden) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockCommentRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if c, ok := m.s.Comments[id]; ok {
		c.Hidden = hidden
		m.s.recount(c.StoryID)
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct{ s *Store }

func (m *MockCategoryRepository) GetOrCreate(ctx context.Context, name string) (*models.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	for _, c := range m.s.Categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Category{ID: uuid.NewString(), Name: name, Slug: models.Slugify(name), CreatedAt: time.Now().UTC()}
	m.s.Categories[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *MockCategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.Categories[id]
	return ok, m.s.Err
}

// MockSearchRepository is a simplified in-memory SearchRepository.
// Story matching covers text, title, genre, author, hashtags, dates and statuses;
// ordering is always views desc then id.
type MockSearchRepository struct{ s *Store }

func (m *MockSearchRepository) SearchStories(ctx context.Context, q search.StoryQuery, limit, offset int) ([]models.StoryHit, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.LastStoryQuery, m.s.LastLimit, m.s.LastOffset = q, limit, offset
	if m.s.Err != nil {
		return nil, 0, m.s.Err
	}

	statuses := q.Statuses
	if len(statuses) == 0 {
		statuses = []models.Status{models.StatusPublished}
	}

	var matched []*models.Story
	for _, st := range m.s.Stories {
		if !containsStatus(statuses, st.Status) || !m.matches(st, q.Filter) {
			continue
		}
		matched = append(matched, st)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Views != matched[j].Views {
			return matched[i].Views > matched[j].Views
		}
		return matched[i].ID < matched[j].ID
	})

	hits := make([]models.StoryHit, 0)
	for _, st := range window(matched, limit, offset) {
		author := m.s.Users[st.AuthorID]
		ref := models.AuthorRef{ID: st.AuthorID}
		if author != nil {
			ref.Username, ref.DisplayName = author.Username, author.DisplayName
		}
		hits = append(hits, models.StoryHit{
			ID: st.ID, Slug: st.Slug, Title: st.Title, Excerpt: st.Excerpt, Genre: st.Genre,
			Hashtags: st.Hashtags, ReadTime: st.ReadTime, Status: st.Status, Author: ref,
			Views: st.Views, Likes: st.Likes, Comments: st.Comments,
			PublishedAt: st.PublishedAt, CreatedAt: st.CreatedAt,
		})
	}
	return hits, len(matched), nil
}

func (m *MockSearchRepository) matches(st *models.Story, f search.Filter) bool {
	if f.Text != "" && !containsFold(st.Title, f.Text) && !containsFold(st.Excerpt, f.Text) && !containsFold(st.Content, f.Text) {
		return false
	}
	if f.Title != "" && !containsFold(st.Title, f.Title) {
		return false
	}
	if f.Genre != "" && !containsFold(st.Genre, f.Genre) {
		return false
	}
	if f.Author != "" {
		u := m.s.Users[st.AuthorID]
		if u == nil || (!containsFold(u.Username, f.Author) && !containsFold(u.DisplayName, f.Author)) {
			return false
		}
	}
	for _, tag := range f.Hashtags {
		found := false
		for _, have := range st.Hashtags {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DateRange != nil {
		if st.PublishedAt == nil || st.PublishedAt.Before(f.DateRange.From) || !st.PublishedAt.Before(f.DateRange.To) {
			return false
		}
	}
	return true
}

func (m *MockSearchRepository) SearchUsers(ctx context.Context, text string, sortMode search.SortMode, limit, offset int) ([]models.UserHit, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.LastLimit, m.s.LastOffset = limit, offset
	if m.s.Err != nil {
		return nil, 0, m.s.Err
	}

	var hits []models.UserHit
	for _, u := range m.s.Users {
		byName := containsFold(u.Username, text)
		byDisplay := containsFold(u.DisplayName, text)
		if !byName && !byDisplay {
			continue
		}
		score := 0.01 * float64(u.FollowersCount)
		if byName {
			score += 10
		}
		if byDisplay {
			score += 5
		}
		hits = append(hits, models.UserHit{
			ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Bio: u.Bio,
			FollowersCount: u.FollowersCount, Score: score, CreatedAt: u.CreatedAt,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].FollowersCount != hits[j].FollowersCount {
			return hits[i].FollowersCount > hits[j].FollowersCount
		}
		return hits[i].ID < hits[j].ID
	})
	total := len(hits)
	return append(make([]models.UserHit, 0), window(hits, limit, offset)...), total, nil
}

func (m *MockSearchRepository) SuggestTitles(ctx context.Context, text string, limit int) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []string
	for _, st := range m.s.Stories {
		if st.Status == models.StatusPublished && containsFold(st.Title, text) {
			out = append(out, st.Title)
		}
	}
	sort.Strings(out)
	return capStrings(out, limit), m.s.Err
}

func (m *MockSearchRepository) SuggestUsernames(ctx context.Context, text string, limit int) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []string
	for _, u := range m.s.Users {
		if containsFold(u.Username, text) {
			out = append(out, u.Username)
		}
	}
	sort.Strings(out)
	return capStrings(out, limit), m.s.Err
}

func (m *MockSearchRepository) SuggestHashtags(ctx context.Context, text string, limit int) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, st := range m.s.Stories {
		if st.Status != models.StatusPublished {
			continue
		}
		for _, tag := range st.Hashtags {
			if !seen[tag] && containsFold(tag, text) {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return capStrings(out, limit), m.s.Err
}

func (m *MockSearchRepository) Genres(ctx context.Context) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, st := range m.s.Stories {
		if st.Status == models.StatusPublished && !seen[st.Genre] {
			seen[st.Genre] = true
			out = append(out, st.Genre)
		}
	}
	sort.Strings(out)
	return out, m.s.Err
}

func (m *MockSearchRepository) PopularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[string]int)
	for _, st := range m.s.Stories {
		if st.Status != models.StatusPublished {
			continue
		}
		for _, tag := range st.Hashtags {
			counts[tag]++
		}
	}
	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return window(out, limit, 0), m.s.Err
}

func (m *MockSearchRepository) TopAuthors(ctx context.Context, limit int) ([]models.AuthorCount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[string]int)
	for _, st := range m.s.Stories {
		if st.Status == models.StatusPublished {
			counts[st.AuthorID]++
		}
	}
	out := make([]models.AuthorCount, 0, len(counts))
	for id, n := range counts {
		ac := models.AuthorCount{AuthorRef: models.AuthorRef{ID: id}, Stories: n}
		if u := m.s.Users[id]; u != nil {
			ac.Username, ac.DisplayName = u.Username, u.DisplayName
		}
		out = append(out, ac)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stories != out[j].Stories {
			return out[i].Stories > out[j].Stories
		}
		return out[i].Username < out[j].Username
	})
	return window(out, limit, 0), m.s.Err
}

func containsStatus(statuses []models.Status, s models.Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func capStrings(s []string, limit int) []string {
	if s == nil {
		return []string{}
	}
	return window(s, limit, 0)
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
