package repository

import (
	"context"
	"time"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/persistence"
)

// OrganizerRepository manages organizers and their ticket ledgers.
type OrganizerRepository interface {
	// Ensure creates the organizer when absent and reports whether it did.
	Ensure(ctx context.Context, name string) (bool, error)
	GetByName(ctx context.Context, name string) (*domain.Organizer, error)
	// AddEntry inserts the ledger entry unless (organizer, code) already exists.
	AddEntry(ctx context.Context, entry *domain.LedgerEntry) (bool, error)
	FindEntry(ctx context.Context, organizerName, code string) (*domain.LedgerEntry, error)
	// MarkRedeemed flips an unredeemed entry to redeemed. It returns
	// pgx.ErrNoRows when the entry is absent or already redeemed.
	MarkRedeemed(ctx context.Context, organizerName, code string, at time.Time) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, organizerName string) ([]domain.LedgerEntry, error)
}

type organizerRepository struct {
	db persistence.DBTX
}

// NewOrganizerRepository instantiates repository.
func NewOrganizerRepository(db persistence.DBTX) OrganizerRepository {
	return &organizerRepository{db: db}
}

func (r *organizerRepository) Ensure(ctx context.Context, name string) (bool, error) {
	const query = `
        INSERT INTO organizers (name) VALUES ($1)
        ON CONFLICT (name) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query, name)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *organizerRepository) GetByName(ctx context.Context, name string) (*domain.Organizer, error) {
	const query = `SELECT name, created_at, updated_at FROM organizers WHERE name=$1`
	var org domain.Organizer
	if err := r.db.QueryRow(ctx, query, name).Scan(&org.Name, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizerRepository) AddEntry(ctx context.Context, entry *domain.LedgerEntry) (bool, error) {
	const query = `
        INSERT INTO ledger_entries (organizer_name, code, type, account_id, price)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (organizer_name, code) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query,
		entry.OrganizerName,
		entry.Code,
		entry.Type,
		entry.AccountID,
		entry.Price,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

const ledgerColumns = `organizer_name, code, type, account_id, price, created_at, redeemed, redeemed_at`

func (r *organizerRepository) FindEntry(ctx context.Context, organizerName, code string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE organizer_name=$1 AND code=$2`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, organizerName, code))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *organizerRepository) MarkRedeemed(ctx context.Context, organizerName, code string, at time.Time) (*domain.LedgerEntry, error) {
	query := `
        UPDATE ledger_entries SET redeemed=TRUE, redeemed_at=$3
        WHERE organizer_name=$1 AND code=$2 AND redeemed=FALSE
        RETURNING ` + ledgerColumns
	entry, err := scanEntry(r.db.QueryRow(ctx, query, organizerName, code, at))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *organizerRepository) ListEntries(ctx context.Context, organizerName string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE organizer_name=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, organizerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	if err := row.Scan(
		&entry.OrganizerName,
		&entry.Code,
		&entry.Type,
		&entry.AccountID,
		&entry.Price,
		&entry.CreatedAt,
		&entry.Redeemed,
		&entry.RedeemedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
