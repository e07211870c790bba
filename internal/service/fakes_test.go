package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	"github.com/spec-kit/event-ticketing/internal/session"
)

// memStore is an in-memory stand-in for the Postgres tables. Transactions
// are serialized and roll back by restoring a copy of the state.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	accounts   map[string]domain.Account
	stubs      map[string][]domain.TicketStub
	organizers map[string]domain.Organizer
	entries    map[string][]domain.LedgerEntry
	resets     map[string]repository.PasswordResetToken

	clock     func() time.Time
	failOn    string
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		accounts:   map[string]domain.Account{},
		stubs:      map[string][]domain.TicketStub{},
		organizers: map[string]domain.Organizer{},
		entries:    map[string][]domain.LedgerEntry{},
		resets:     map[string]repository.PasswordResetToken{},
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

type memState struct {
	accounts   map[string]domain.Account
	stubs      map[string][]domain.TicketStub
	organizers map[string]domain.Organizer
	entries    map[string][]domain.LedgerEntry
}

func (m *memStore) snapshot() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := memState{
		accounts:   map[string]domain.Account{},
		stubs:      map[string][]domain.TicketStub{},
		organizers: map[string]domain.Organizer{},
		entries:    map[string][]domain.LedgerEntry{},
	}
	for k, v := range m.accounts {
		st.accounts[k] = v
	}
	for k, v := range m.stubs {
		st.stubs[k] = append([]domain.TicketStub(nil), v...)
	}
	for k, v := range m.organizers {
		st.organizers[k] = v
	}
	for k, v := range m.entries {
		st.entries[k] = append([]domain.LedgerEntry(nil), v...)
	}
	return st
}

func (m *memStore) restore(st memState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts, m.stubs, m.organizers, m.entries = st.accounts, st.stubs, st.organizers, st.entries
}

func (m *memStore) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	before := m.snapshot()
	err := fn(ctx, repository.Repositories{Accounts: memAccounts{m}, Organizers: memOrganizers{m}})
	if err != nil {
		m.restore(before)
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return errInjected
	}
	return nil
}

func (m *memStore) seedAccount(a domain.Account) domain.Account {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) seedEntry(e domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.organizers[e.OrganizerName]; !ok {
		m.organizers[e.OrganizerName] = domain.Organizer{Name: e.OrganizerName}
	}
	m.entries[e.OrganizerName] = append(m.entries[e.OrganizerName], e)
}

func (m *memStore) entry(org, code string) (domain.LedgerEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries[org] {
		if e.Code == code {
			return e, true
		}
	}
	return domain.LedgerEntry{}, false
}

func (m *memStore) stubsFor(accountID, organizerName string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := []string{}
	for _, s := range m.stubs[accountID] {
		if s.OrganizerName == organizerName {
			codes = append(codes, s.Code)
		}
	}
	return codes
}

func (m *memStore) stubCodes(accountID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := []string{}
	for _, s := range m.stubs[accountID] {
		codes = append(codes, s.Code)
	}
	return codes
}

type injectedError struct{}

func (injectedError) Error() string { return "injected failure" }

var errInjected error = injectedError{}

type memAccounts struct{ m *memStore }

func (r memAccounts) Create(ctx context.Context, a *domain.Account) error {
	if err := r.m.fail("accounts.create"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = r.m.clock()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Tickets = nil
	r.m.accounts[a.ID] = stored
	return nil
}

func (r memAccounts) Update(ctx context.Context, a *domain.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.accounts[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	a.UpdatedAt = r.m.clock()
	stored := *a
	stored.Tickets = nil
	r.m.accounts[a.ID] = stored
	return nil
}

func (r memAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a.Tickets = append([]domain.TicketStub{}, r.m.stubs[id]...)
	return &a, nil
}

func (r memAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.accounts {
		if a.Email == email {
			a.Tickets = append([]domain.TicketStub{}, r.m.stubs[a.ID]...)
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memAccounts) AddStub(ctx context.Context, accountID string, stub *domain.TicketStub) error {
	if err := r.m.fail("accounts.add_stub"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stub.CreatedAt = r.m.clock()
	r.m.stubs[accountID] = append(r.m.stubs[accountID], *stub)
	return nil
}

func (r memAccounts) RemoveStubs(ctx context.Context, accountID, organizerName, code string) (int64, error) {
	if err := r.m.fail("accounts.remove_stubs"); err != nil {
		return 0, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	kept := []domain.TicketStub{}
	var removed int64
	for _, s := range r.m.stubs[accountID] {
		if s.Code == code && s.OrganizerName == organizerName {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	r.m.stubs[accountID] = kept
	return removed, nil
}

func (r memAccounts) ListStubs(ctx context.Context, accountID string) ([]domain.TicketStub, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]domain.TicketStub{}, r.m.stubs[accountID]...), nil
}

type memOrganizers struct{ m *memStore }

func (r memOrganizers) Ensure(ctx context.Context, name string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.organizers[name]; ok {
		return false, nil
	}
	now := r.m.clock()
	r.m.organizers[name] = domain.Organizer{Name: name, CreatedAt: now, UpdatedAt: now}
	return true, nil
}

func (r memOrganizers) GetByName(ctx context.Context, name string) (*domain.Organizer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	org, ok := r.m.organizers[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &org, nil
}

func (r memOrganizers) AddEntry(ctx context.Context, entry *domain.LedgerEntry) (bool, error) {
	if err := r.m.fail("organizers.add_entry"); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.entries[entry.OrganizerName] {
		if e.Code == entry.Code {
			return false, nil
		}
	}
	entry.CreatedAt = r.m.clock()
	r.m.entries[entry.OrganizerName] = append(r.m.entries[entry.OrganizerName], *entry)
	return true, nil
}

func (r memOrganizers) FindEntry(ctx context.Context, org, code string) (*domain.LedgerEntry, error) {
	e, ok := r.m.entry(org, code)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r memOrganizers) MarkRedeemed(ctx context.Context, org, code string, at time.Time) (*domain.LedgerEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, e := range r.m.entries[org] {
		if e.Code == code && !e.Redeemed {
			e.Redeemed = true
			e.RedeemedAt = &at
			r.m.entries[org][i] = e
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memOrganizers) ListEntries(ctx context.Context, org string) ([]domain.LedgerEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]domain.LedgerEntry{}, r.m.entries[org]...), nil
}

type memResets struct{ m *memStore }

func (r memResets) Create(ctx context.Context, t *repository.PasswordResetToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.CreatedAt = r.m.clock()
	r.m.resets[t.Token] = *t
	return nil
}

func (r memResets) GetByToken(ctx context.Context, token string) (*repository.PasswordResetToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.resets[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r memResets) MarkUsed(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for k, t := range r.m.resets {
		if t.ID == id {
			if t.UsedAt != nil {
				return false, nil
			}
			now := r.m.clock()
			t.UsedAt = &now
			r.m.resets[k] = t
			return true, nil
		}
	}
	return false, nil
}

func newTestSessions(t *testing.T) (*auth.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:     "access",
		RefreshSecret:    "refresh",
		ActivationSecret: "activation",
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       20 * time.Minute,
		ActivationTTL:    5 * time.Minute,
	})
	return auth.NewSessionManager(tokens, session.NewRedisStore(client, "session:"), nil), mr
}
