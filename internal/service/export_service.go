package service

import (
	"context"
	"fmt"
	"time"

	"formassist/internal/form"
	"formassist/internal/model"
)

// ExportFile is a rendered export ready for download
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService renders sessions as downloadable documents
type ExportService struct {
	sessions *SessionService
	reviews  *ReviewService
	now      func() time.Time
}

// NewExportService creates a new export service
func NewExportService(sessions *SessionService, reviews *ReviewService) *ExportService {
	return &ExportService{sessions: sessions, reviews: reviews, now: time.Now}
}

// Export renders the session in the requested format. The last stored
// review is included when there is one.
func (s *ExportService) Export(ctx context.Context, sessionID string, format model.ExportFormat) (*ExportFile, error) {
	if format != model.ExportJSON && format != model.ExportTranscript {
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	stored, err := s.reviews.Stored(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var review *model.ReviewRecord
	if stored != nil {
		review = &stored.Review
	}

	file := &ExportFile{}
	err = s.sessions.View(ctx, sessionID, func(_ model.Session, store *form.Store) error {
		m := store.Module()
		file.Name = form.FileName(m.ID, format, s.now())
		if format == model.ExportTranscript {
			file.ContentType = "text/markdown; charset=utf-8"
			file.Data = []byte(form.Transcript(m, store.Locale(), store, review))
			return nil
		}
		file.ContentType = "application/json"
		data, err := form.MarshalDocument(form.BuildDocument(m, store.Locale(), store, review))
		file.Data = data
		return err
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}
