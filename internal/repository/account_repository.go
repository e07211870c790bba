package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/persistence"
)

// AccountRepository defines persistence access for accounts and their ticket stubs.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	AddStub(ctx context.Context, accountID string, stub *domain.TicketStub) error
	// RemoveStubs deletes every stub the account holds for the organizer's
	// code and reports how many went. Codes repeat across organizers.
	RemoveStubs(ctx context.Context, accountID, organizerName, code string) (int64, error)
	ListStubs(ctx context.Context, accountID string) ([]domain.TicketStub, error)
}

type accountRepository struct {
	db persistence.DBTX
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db persistence.DBTX) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (id, name, email, password_hash, avatar, role, is_verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Role == "" {
		account.Role = domain.RoleUser
	}
	return r.db.QueryRow(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Avatar,
		string(account.Role),
		account.IsVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET name=$1, email=$2, password_hash=$3, avatar=$4, role=$5, is_verified=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return r.db.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Avatar,
		string(account.Role),
		account.IsVerified,
		account.ID,
	).Scan(&account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, avatar, role, is_verified, created_at, updated_at
        FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, avatar, role, is_verified, created_at, updated_at
        FROM accounts WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var (
		account domain.Account
		role    string
	)
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Avatar,
		&role,
		&account.IsVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.Role = domain.Role(role)

	stubs, err := r.ListStubs(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.Tickets = stubs
	return &account, nil
}

func (r *accountRepository) AddStub(ctx context.Context, accountID string, stub *domain.TicketStub) error {
	const query = `
        INSERT INTO ticket_stubs (account_id, ticket_code, selected_types, event_id, organizer_name)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

	selected := stub.SelectedTypes
	if selected == nil {
		selected = []domain.TicketTypeSelection{}
	}
	raw, err := json.Marshal(selected)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, query,
		accountID,
		stub.Code,
		raw,
		stub.EventID,
		stub.OrganizerName,
	).Scan(&stub.CreatedAt)
}

func (r *accountRepository) RemoveStubs(ctx context.Context, accountID, organizerName, code string) (int64, error) {
	const query = `DELETE FROM ticket_stubs WHERE account_id=$1 AND ticket_code=$2 AND organizer_name=$3`
	cmd, err := r.db.Exec(ctx, query, accountID, code, organizerName)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *accountRepository) ListStubs(ctx context.Context, accountID string) ([]domain.TicketStub, error) {
	const query = `
        SELECT ticket_code, selected_types, event_id, organizer_name, created_at
        FROM ticket_stubs WHERE account_id=$1
        ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stubs := []domain.TicketStub{}
	for rows.Next() {
		var (
			stub domain.TicketStub
			raw  []byte
		)
		if err := rows.Scan(&stub.Code, &raw, &stub.EventID, &stub.OrganizerName, &stub.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &stub.SelectedTypes); err != nil {
				return nil, err
			}
		}
		stubs = append(stubs, stub)
	}
	return stubs, rows.Err()
}

// IsNotFound reports whether a repository error means the row is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
