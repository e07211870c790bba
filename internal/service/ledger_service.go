package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// SessionSyncer refreshes the cached account snapshot after a mutation.
type SessionSyncer interface {
	Sync(ctx context.Context, snapshot domain.AccountSnapshot) error
}

// LedgerRecorder counts ledger outcomes.
type LedgerRecorder interface {
	RecordLedger(event string)
}

// LedgerService keeps the buyer's ticket stubs and the organizer's ledger in
// step. Issue and Redeem each touch both sides inside one transaction.
type LedgerService struct {
	uow        repository.UnitOfWork
	accounts   repository.AccountRepository
	sessions   SessionSyncer
	dispatcher events.Dispatcher
	metrics    LedgerRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// LedgerDependencies bundles collaborators for the ledger service.
type LedgerDependencies struct {
	UnitOfWork  repository.UnitOfWork
	AccountRepo repository.AccountRepository
	Sessions    SessionSyncer
	Dispatcher  events.Dispatcher
	Metrics     LedgerRecorder
	Logger      *zap.Logger
}

// IssueInput describes a ticket handed to an account.
type IssueInput struct {
	AccountID     string
	Code          string
	OrganizerName string
	EventID       string
	SelectedTypes []domain.TicketTypeSelection
}

// IssueResult reports what the issuance created.
type IssueResult struct {
	Stub             domain.TicketStub
	OrganizerCreated bool
	EntryCreated     bool
}

// NewLedgerService constructs the service.
func NewLedgerService(deps LedgerDependencies) *LedgerService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		uow:        deps.UnitOfWork,
		accounts:   deps.AccountRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue appends a stub to the account and admits the ticket to the organizer's
// ledger. The stub is appended even when the ledger already holds the code.
func (s *LedgerService) Issue(ctx context.Context, in IssueInput) (*IssueResult, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.OrganizerName = strings.TrimSpace(in.OrganizerName)
	if in.Code == "" || in.OrganizerName == "" {
		return nil, apperrors.NewValidationError("Please provide ticketCode and organizer", nil)
	}
	if len(in.SelectedTypes) == 0 || strings.TrimSpace(in.SelectedTypes[0].Price) == "" {
		return nil, apperrors.NewValidationError("Price must be indicated", map[string]any{"ticket_code": in.Code})
	}
	selected := in.SelectedTypes[0]

	var (
		result   IssueResult
		snapshot domain.AccountSnapshot
	)
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		account, err := repos.Accounts.GetByID(ctx, in.AccountID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound("Account", map[string]any{"account_id": in.AccountID})
			}
			return err
		}

		stub := domain.TicketStub{
			Code:          in.Code,
			SelectedTypes: in.SelectedTypes,
			EventID:       in.EventID,
			OrganizerName: in.OrganizerName,
		}
		if err := repos.Accounts.AddStub(ctx, account.ID, &stub); err != nil {
			return fmt.Errorf("add stub: %w", err)
		}
		account.Tickets = append(account.Tickets, stub)

		created, err := repos.Organizers.Ensure(ctx, in.OrganizerName)
		if err != nil {
			return fmt.Errorf("ensure organizer: %w", err)
		}
		inserted, err := repos.Organizers.AddEntry(ctx, &domain.LedgerEntry{
			OrganizerName: in.OrganizerName,
			Code:          in.Code,
			Type:          selected.Type,
			AccountID:     account.ID,
			Price:         strings.TrimSpace(selected.Price),
		})
		if err != nil {
			return fmt.Errorf("add ledger entry: %w", err)
		}

		result = IssueResult{Stub: stub, OrganizerCreated: created, EntryCreated: inserted}
		snapshot = account.Snapshot()
		return nil
	})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	if result.EntryCreated {
		s.record(observability.LedgerIssued)
	} else {
		s.record(observability.LedgerIssuedDuplicate)
		s.logger.Warn("ticket code already on ledger; stub appended only",
			zap.String("organizer", in.OrganizerName),
			zap.String("ticket_code", in.Code))
	}
	s.logger.Info("ticket issued",
		zap.String("account_id", in.AccountID),
		zap.String("organizer", in.OrganizerName),
		zap.String("ticket_code", in.Code),
		zap.Bool("organizer_created", result.OrganizerCreated))

	s.syncSession(ctx, snapshot)
	s.publish(ctx, events.New(events.EventTicketIssued, in.AccountID, events.TicketIssuedPayload{
		Code:          in.Code,
		OrganizerName: in.OrganizerName,
		Type:          selected.Type,
		Price:         selected.Price,
		Duplicate:     !result.EntryCreated,
	}))
	return &result, nil
}

// Redeem marks a ticket as scanned exactly once and removes the buyer's stubs
// for it. A missing stub or owner account does not fail the redemption.
func (s *LedgerService) Redeem(ctx context.Context, code, organizerName string) (*domain.RedemptionResult, error) {
	code = strings.TrimSpace(code)
	organizerName = strings.TrimSpace(organizerName)
	if code == "" || organizerName == "" {
		return nil, apperrors.NewValidationError("Please provide ticketCode and organizerName", nil)
	}

	var result domain.RedemptionResult
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Organizers.GetByName(ctx, organizerName); err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound("Organizer", map[string]any{"organizer": organizerName})
			}
			return err
		}

		entry, err := repos.Organizers.MarkRedeemed(ctx, organizerName, code, s.now().UTC())
		if err != nil {
			if !repository.IsNotFound(err) {
				return fmt.Errorf("mark redeemed: %w", err)
			}
			return s.rejection(ctx, repos.Organizers, organizerName, code)
		}

		removed, err := repos.Accounts.RemoveStubs(ctx, entry.AccountID, organizerName, code)
		if err != nil {
			return fmt.Errorf("remove stubs: %w", err)
		}
		if removed == 0 {
			s.logger.Info("redeemed ticket had no stub on owner account",
				zap.String("account_id", entry.AccountID),
				zap.String("ticket_code", code))
		}

		result = domain.RedemptionResult{
			Code:          code,
			OrganizerName: organizerName,
			Type:          entry.Type,
			AccountID:     entry.AccountID,
			StubRemoved:   removed > 0,
		}
		if entry.RedeemedAt != nil {
			result.RedeemedAt = *entry.RedeemedAt
		}
		return nil
	})
	if err != nil {
		switch {
		case apperrors.HasCode(err, apperrors.CodeAlreadyRedeemed):
			s.record(observability.LedgerAlreadyRedeemed)
			s.logger.Warn("double redemption attempt",
				zap.String("organizer", organizerName),
				zap.String("ticket_code", code))
		case apperrors.HasCode(err, apperrors.CodeNotFound):
			s.record(observability.LedgerRedeemNotFound)
		}
		return nil, apperrors.ToDomainError(err)
	}

	s.record(observability.LedgerRedeemed)
	s.logger.Info("ticket redeemed",
		zap.String("organizer", organizerName),
		zap.String("ticket_code", code),
		zap.String("type", result.Type))

	if result.StubRemoved {
		s.refreshOwnerSession(ctx, result.AccountID)
	}
	s.publish(ctx, events.New(events.EventTicketRedeemed, result.AccountID, events.TicketRedeemedPayload{
		Code:          code,
		OrganizerName: organizerName,
		Type:          result.Type,
	}))
	return &result, nil
}

// ListForAccount returns the account's ticket stubs.
func (s *LedgerService) ListForAccount(ctx context.Context, accountID string) ([]domain.TicketStub, error) {
	stubs, err := s.accounts.ListStubs(ctx, accountID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return stubs, nil
}

// rejection classifies a conditional update that matched no row.
func (s *LedgerService) rejection(ctx context.Context, organizers repository.OrganizerRepository, organizerName, code string) error {
	entry, err := organizers.FindEntry(ctx, organizerName, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("Ticket", map[string]any{"ticket_code": code, "organizer": organizerName})
		}
		return fmt.Errorf("find ledger entry: %w", err)
	}
	if entry.Redeemed {
		return apperrors.NewAlreadyRedeemed(code)
	}
	return fmt.Errorf("ledger entry %s/%s not redeemable", organizerName, code)
}

func (s *LedgerService) refreshOwnerSession(ctx context.Context, accountID string) {
	if s.accounts == nil {
		return
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.logger.Warn("reload owner after redemption failed", zap.String("account_id", accountID), zap.Error(err))
		}
		return
	}
	s.syncSession(ctx, account.Snapshot())
}

func (s *LedgerService) syncSession(ctx context.Context, snapshot domain.AccountSnapshot) {
	if s.sessions == nil || snapshot.ID == "" {
		return
	}
	if err := s.sessions.Sync(ctx, snapshot); err != nil {
		s.logger.Warn("session sync failed", zap.String("account_id", snapshot.ID), zap.Error(err))
	}
}

func (s *LedgerService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (s *LedgerService) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordLedger(event)
	}
}
