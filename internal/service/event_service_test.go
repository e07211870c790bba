package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/storage"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

type memEvents struct {
	items map[string]domain.Event
	seq   int
}

func newMemEvents() *memEvents {
	return &memEvents{items: map[string]domain.Event{}}
}

func (r *memEvents) Create(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	r.seq++
	e.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	r.items[e.ID] = *e
	return nil
}

func (r *memEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r *memEvents) sorted(keep func(domain.Event) bool) []domain.Event {
	out := []domain.Event{}
	for _, e := range r.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memEvents) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	return r.sorted(func(domain.Event) bool { return true }), nil
}

func (r *memEvents) Search(ctx context.Context, term string, limit int) ([]domain.Event, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	return r.sorted(func(e domain.Event) bool {
		return strings.Contains(strings.ToLower(e.Name+" "+e.Description+" "+e.Location+" "+e.OrganizerName), term)
	}), nil
}

func (r *memEvents) ListByOrganizer(ctx context.Context, name string) ([]domain.Event, error) {
	return r.sorted(func(e domain.Event) bool { return e.OrganizerName == name }), nil
}

func (r *memEvents) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, e := range r.items {
		if e.Date.Before(cutoff) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func TestEventService_CreateAndGet(t *testing.T) {
	repo := newMemEvents()
	svc := NewEventService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateEventInput{Name: "Rave"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = svc.Create(ctx, CreateEventInput{Name: "Rave", OrganizerName: "AcmeFest"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	created, err := svc.Create(ctx, CreateEventInput{
		Name:          " Rave ",
		OrganizerName: "AcmeFest",
		Date:          time.Date(2030, 1, 1, 22, 0, 0, 0, time.UTC),
		TicketTypes:   []domain.TicketType{{Type: "VIP", Price: "40"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rave", created.Name)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = svc.Get(ctx, uuid.NewString())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestEventService_SearchAndOrganizer(t *testing.T) {
	repo := newMemEvents()
	svc := NewEventService(repo, nil, nil)
	ctx := context.Background()
	date := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, CreateEventInput{Name: "Techno Night", Location: "Berlin", OrganizerName: "AcmeFest", Date: date})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEventInput{Name: "Jazz Brunch", Location: "Paris", OrganizerName: "Other", Date: date})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "berlin")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Techno Night", found[0].Name)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Jazz Brunch", all[0].Name)

	mine, err := svc.ListByOrganizer(ctx, "Other")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestEventService_SweepExpired(t *testing.T) {
	repo := newMemEvents()
	svc := NewEventService(repo, nil, nil)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, CreateEventInput{Name: "Past", OrganizerName: "A", Date: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEventInput{Name: "Future", OrganizerName: "A", Date: now.Add(time.Hour)})
	require.NoError(t, err)

	removed, err := svc.SweepExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	left, _ := svc.List(ctx, 0, 0)
	require.Len(t, left, 1)
	assert.Equal(t, "Future", left[0].Name)
}

func TestEventService_ImageUploadURL(t *testing.T) {
	_, err := NewEventService(newMemEvents(), nil, nil).ImageUploadURL(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))

	p := &stubPresigner{}
	up, err := NewEventService(newMemEvents(), p, nil).ImageUploadURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{storage.PrefixEvents}, p.prefixes)
	assert.NotEmpty(t, up.URL)
}
