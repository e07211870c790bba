package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	"github.com/spec-kit/event-ticketing/internal/storage"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// EventService manages published event listings.
type EventService struct {
	events  repository.EventRepository
	uploads storage.Presigner
	logger  *zap.Logger
}

// CreateEventInput describes a new listing.
type CreateEventInput struct {
	Name          string
	Description   string
	TicketTypes   []domain.TicketType
	Location      string
	Date          time.Time
	Time          string
	Image         string
	OrganizerName string
}

// NewEventService constructs the service.
func NewEventService(events repository.EventRepository, uploads storage.Presigner, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{events: events, uploads: uploads, logger: logger}
}

// Create publishes a listing.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	event := &domain.Event{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		TicketTypes:   in.TicketTypes,
		Location:      strings.TrimSpace(in.Location),
		Date:          in.Date.UTC(),
		Time:          strings.TrimSpace(in.Time),
		Image:         strings.TrimSpace(in.Image),
		OrganizerName: strings.TrimSpace(in.OrganizerName),
	}
	if event.Name == "" || event.OrganizerName == "" {
		return nil, apperrors.NewValidationError("Please provide name and organizer", nil)
	}
	if in.Date.IsZero() {
		return nil, apperrors.NewValidationError("Please provide the event date", nil)
	}
	for i, tt := range event.TicketTypes {
		if strings.TrimSpace(tt.Type) == "" {
			return nil, apperrors.NewValidationError("Ticket type name is required", map[string]any{"index": i})
		}
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("organizer", event.OrganizerName))
	return event, nil
}

// List returns listings, newest first.
func (s *EventService) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	if offset < 0 {
		offset = 0
	}
	events, err := s.events.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return events, nil
}

// Get returns one listing.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return nil, apperrors.NewNotFound("Event", map[string]any{"id": id})
	}
	event, err := s.events.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("Event", map[string]any{"id": id})
		}
		return nil, apperrors.ToDomainError(err)
	}
	return event, nil
}

// Search matches the query against name, description, location and organizer.
func (s *EventService) Search(ctx context.Context, query string) ([]domain.Event, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx, 0, 0)
	}
	events, err := s.events.Search(ctx, query, 0)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return events, nil
}

// ListByOrganizer returns the organizer's listings.
func (s *EventService) ListByOrganizer(ctx context.Context, organizerName string) ([]domain.Event, error) {
	organizerName = strings.TrimSpace(organizerName)
	if organizerName == "" {
		return nil, apperrors.NewValidationError("Please provide organizerName", nil)
	}
	events, err := s.events.ListByOrganizer(ctx, organizerName)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return events, nil
}

// SweepExpired removes listings dated before now.
func (s *EventService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.events.DeleteBefore(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired events removed", zap.Int64("count", removed))
	}
	return removed, nil
}

// ImageUploadURL presigns an event image upload.
func (s *EventService) ImageUploadURL(ctx context.Context) (storage.Upload, error) {
	if s.uploads == nil {
		return storage.Upload{}, apperrors.NewInternalError(errStorageDisabled)
	}
	up, err := s.uploads.PresignUpload(ctx, storage.PrefixEvents)
	if err != nil {
		return storage.Upload{}, apperrors.NewInternalError(err)
	}
	return up, nil
}
