package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/persistence"
)

// EventRepository encapsulates event listing persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, limit, offset int) ([]domain.Event, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerName string) ([]domain.Event, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type eventRepository struct {
	db persistence.DBTX
}

// NewEventRepository instantiates repository.
func NewEventRepository(db persistence.DBTX) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, name, description, ticket_types, location, event_date, event_time, image, organizer_name, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (id, name, description, ticket_types, location, event_date, event_time, image, organizer_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	types := event.TicketTypes
	if types == nil {
		types = []domain.TicketType{}
	}
	raw, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		raw,
		event.Location,
		event.Date,
		event.Time,
		event.Image,
		event.OrganizerName,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	return scanEvent(r.db.QueryRow(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, normalizeLimit(limit), offset)
}

func (r *eventRepository) Search(ctx context.Context, term string, limit int) ([]domain.Event, error) {
	query := `
        SELECT ` + eventColumns + ` FROM events
        WHERE name ILIKE $1 OR description ILIKE $1 OR location ILIKE $1 OR organizer_name ILIKE $1
        ORDER BY event_date ASC
        LIMIT $2`
	return r.list(ctx, query, "%"+escapeLike(strings.TrimSpace(term))+"%", normalizeLimit(limit))
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerName string) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_name=$1 ORDER BY event_date ASC`
	return r.list(ctx, query, organizerName)
}

func (r *eventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM events WHERE event_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var (
		event domain.Event
		raw   []byte
	)
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&raw,
		&event.Location,
		&event.Date,
		&event.Time,
		&event.Image,
		&event.OrganizerName,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &event.TicketTypes); err != nil {
			return nil, err
		}
	}
	return &event, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
