package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

var ledgerCols = []string{"organizer_name", "code", "type", "account_id", "price", "created_at", "redeemed", "redeemed_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestOrganizerRepository_Ensure(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrganizerRepository(mock)

	mock.ExpectExec("INSERT INTO organizers").WithArgs("Club X").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO organizers").WithArgs("Club X").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := repo.Ensure(context.Background(), "Club X")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Ensure(context.Background(), "Club X")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepository_AddEntryIgnoresDuplicateCode(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrganizerRepository(mock)
	entry := &domain.LedgerEntry{OrganizerName: "Club X", Code: "T-1", Type: "VIP", AccountID: "acc-1", Price: "20"}

	mock.ExpectExec("ON CONFLICT \\(organizer_name, code\\) DO NOTHING").
		WithArgs("Club X", "T-1", "VIP", "acc-1", "20").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("ON CONFLICT \\(organizer_name, code\\) DO NOTHING").
		WithArgs("Club X", "T-1", "VIP", "acc-1", "20").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.AddEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.AddEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepository_MarkRedeemed(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrganizerRepository(mock)
	at := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	created := at.Add(-48 * time.Hour)

	mock.ExpectQuery("UPDATE ledger_entries SET redeemed=TRUE").
		WithArgs("Club X", "T-1", at).
		WillReturnRows(pgxmock.NewRows(ledgerCols).
			AddRow("Club X", "T-1", "VIP", "acc-1", "20", created, true, &at))

	entry, err := repo.MarkRedeemed(context.Background(), "Club X", "T-1", at)
	require.NoError(t, err)
	assert.True(t, entry.Redeemed)
	assert.Equal(t, "VIP", entry.Type)
	require.NotNil(t, entry.RedeemedAt)
	assert.Equal(t, at, *entry.RedeemedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepository_MarkRedeemedNoRow(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrganizerRepository(mock)

	mock.ExpectQuery("AND redeemed=FALSE").
		WithArgs("Club X", "T-1", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.MarkRedeemed(context.Background(), "Club X", "T-1", time.Now())
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepository_ListEntries(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrganizerRepository(mock)
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	redeemedAt := created.Add(time.Hour)

	mock.ExpectQuery("FROM ledger_entries WHERE organizer_name").
		WithArgs("Club X").
		WillReturnRows(pgxmock.NewRows(ledgerCols).
			AddRow("Club X", "T-1", "VIP", "acc-1", "20", created, true, &redeemedAt).
			AddRow("Club X", "T-2", "GA", "acc-2", "abc", created, false, (*time.Time)(nil)))

	entries, err := repo.ListEntries(context.Background(), "Club X")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[1].Price)
	assert.Nil(t, entries[1].RedeemedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
