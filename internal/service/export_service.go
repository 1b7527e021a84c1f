package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/metrics"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// flushEvery is how many records are written between flushes
const flushEvery = 100

var csvHeader = []string{
	"id", "slug", "title", "genre", "hashtags", "author_id", "author_name", "status",
	"views", "likes", "saves", "comments", "shares", "published_at", "created_at", "updated_at",
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamStories streams stories in the specified format.
// An unknown format is rejected before anything is written.
func (s *exportService) StreamStories(ctx context.Context, w http.ResponseWriter, format string, filter repository.ExportFilter) error {
	format = strings.ToLower(format)
	if format == "" {
		format = FormatNDJSON
	}

	var (
		count int
		err   error
	)
	s.log.Info().Str("format", format).Msg("Starting stories export")

	switch format {
	case FormatNDJSON:
		count, err = s.streamNDJSON(ctx, w, filter)
	case FormatJSON:
		count, err = s.streamJSON(ctx, w, filter)
	case FormatCSV:
		count, err = s.streamCSV(ctx, w, filter)
	default:
		return apperror.Validation("unsupported format: %s (use ndjson, json or csv)", format)
	}

	metrics.ExportRecords.WithLabelValues(format).Add(float64(count))
	if err != nil {
		s.log.Error().Err(err).Int("count", count).Msg("Stories export aborted")
		return err
	}
	s.log.Info().Int("count", count).Msg("Stories export completed")
	return nil
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter, filter repository.ExportFilter) (int, error) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=stories.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Story.StreamAll(ctx, filter, func(story *models.Story) error {
		data, err := json.Marshal(story)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		count++

		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	return count, err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter, filter repository.ExportFilter) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=stories.json")

	if _, err := w.Write([]byte("[")); err != nil {
		return 0, err
	}
	count := 0

	err := s.repos.Story.StreamAll(ctx, filter, func(story *models.Story) error {
		if count > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		data, err := json.Marshal(story)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	if _, err := w.Write([]byte("]")); err != nil {
		return count, err
	}
	return count, nil
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter, filter repository.ExportFilter) (int, error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=stories.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return 0, err
	}

	count := 0
	err := s.repos.Story.StreamAll(ctx, filter, func(story *models.Story) error {
		count++
		return writer.Write([]string{
			story.ID,
			story.Slug,
			story.Title,
			story.Genre,
			strings.Join(story.Hashtags, " "),
			story.AuthorID,
			story.AuthorName,
			string(story.Status),
			strconv.Itoa(story.Views),
			strconv.Itoa(story.Likes),
			strconv.Itoa(story.Saves),
			strconv.Itoa(story.Comments),
			strconv.Itoa(story.Shares),
			formatOptionalTime(story.PublishedAt),
			story.CreatedAt.Format(time.RFC3339),
			story.UpdatedAt.Format(time.RFC3339),
		})
	})
	return count, err
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
