package repository

import (
	"context"

	"github.com/spec-kit/event-ticketing/internal/persistence"
)

// Repositories groups the repositories that take part in one transaction.
type Repositories struct {
	Accounts   AccountRepository
	Organizers OrganizerRepository
}

// UnitOfWork runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type pgUnitOfWork struct {
	pool persistence.Pool
}

// NewUnitOfWork returns a Postgres-backed unit of work.
func NewUnitOfWork(pool persistence.Pool) UnitOfWork {
	return &pgUnitOfWork{pool: pool}
}

func (u *pgUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return persistence.WithTx(ctx, u.pool, func(ctx context.Context, tx persistence.DBTX) error {
		return fn(ctx, Repositories{
			Accounts:   NewAccountRepository(tx),
			Organizers: NewOrganizerRepository(tx),
		})
	})
}
