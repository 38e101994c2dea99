package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/accounting"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/pagination"
	"github.com/google/uuid"
)

// journalService is the draft -> posted state machine for journal entries.
type journalService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	journalRepo portsrepo.JournalRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(
	txManager portsrepo.TransactionManager,
	journalRepo portsrepo.JournalRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	options ...ServiceOption,
) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(options),
		txManager:   txManager,
		journalRepo: journalRepo,
		periodRepo:  periodRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) CreateEntry(ctx context.Context, organizationID string, req dto.CreateEntryRequest, createdBy string) (*domain.JournalEntry, error) {
	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = domain.SourceManual
	}
	switch sourceType {
	case domain.SourceManual, domain.SourceDonation, domain.SourceReversal:
	default:
		return nil, fmt.Errorf("%w: invalid source type '%s'", apperrors.ErrValidation, sourceType)
	}
	if sourceType != domain.SourceManual && (req.SourceID == nil || *req.SourceID == "") {
		return nil, fmt.Errorf("%w: source ID is required for %s entries", apperrors.ErrValidation, sourceType)
	}

	lines := dto.ToLineItems(req.LineItems)
	if len(lines) < accounting.MinLineItems {
		return nil, fmt.Errorf("%w: journal entry must have at least %d line items", apperrors.ErrValidation, accounting.MinLineItems)
	}
	if err := accounting.ValidateLineItems(lines); err != nil {
		return nil, err
	}

	now := s.Now()
	entry := domain.JournalEntry{
		EntryID:        uuid.NewString(),
		OrganizationID: organizationID,
		EntryDate:      domain.DateOnly(req.EntryDate),
		Description:    req.Description,
		Status:         domain.Draft,
		SourceType:     sourceType,
		SourceID:       req.SourceID,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		LineItems:      lines,
	}
	for i := range entry.LineItems {
		entry.LineItems[i].LineItemID = uuid.NewString()
		entry.LineItems[i].EntryID = entry.EntryID
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		period, err := s.openPeriodForDate(ctx, organizationID, entry.EntryDate)
		if err != nil {
			return err
		}
		entry.PeriodID = period.PeriodID

		if err := s.validateAccounts(ctx, organizationID, entry.LineItems); err != nil {
			return err
		}
		if err := accounting.ValidateBalance(entry.LineItems); err != nil {
			return err
		}

		if entry.SourceID != nil {
			existing, err := s.journalRepo.FindEntryBySource(ctx, organizationID, entry.SourceType, *entry.SourceID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: %s %s is recorded by entry %s", apperrors.ErrDuplicateSource, entry.SourceType, *entry.SourceID, existing.EntryID)
			}
		}

		return s.journalRepo.SaveEntry(ctx, entry)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create journal entry", slog.String("organization_id", organizationID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("period_id", entry.PeriodID),
		slog.Int("line_items", len(entry.LineItems)))
	return &entry, nil
}

func (s *journalService) PostEntry(ctx context.Context, organizationID, entryID, postedBy string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.journalRepo.FindEntryByIDForUpdate(ctx, organizationID, entryID)
		if err != nil {
			return err
		}
		if entry.IsPosted() {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyPosted, entryID)
		}

		// The period may have closed since the draft was created.
		period, err := s.periodRepo.FindPeriodByIDForShare(ctx, organizationID, entry.PeriodID)
		if err != nil {
			return err
		}
		if !period.IsOpen() {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodClosed, period.PeriodID)
		}

		if err := accounting.ValidateJournalEntry(entry.LineItems); err != nil {
			return err
		}
		if err := s.validateAccounts(ctx, organizationID, entry.LineItems); err != nil {
			return err
		}

		now := s.Now()
		if err := s.journalRepo.MarkEntryPosted(ctx, organizationID, entryID, postedBy, now); err != nil {
			return err
		}
		entry.Status = domain.Posted
		entry.PostedBy = &postedBy
		entry.PostedAt = &now
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to post journal entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted", slog.String("entry_id", entryID))
	return entry, nil
}

func (s *journalService) DeleteEntry(ctx context.Context, organizationID, entryID string) error {
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		entry, err := s.journalRepo.FindEntryByIDForUpdate(ctx, organizationID, entryID)
		if err != nil {
			return err
		}
		if entry.IsPosted() {
			return fmt.Errorf("%w: %s", apperrors.ErrCannotDeletePosted, entryID)
		}
		return s.journalRepo.DeleteEntry(ctx, organizationID, entryID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete journal entry", slog.String("entry_id", entryID))
		return err
	}

	s.LogInfo(ctx, "Journal entry deleted", slog.String("entry_id", entryID))
	return nil
}

func (s *journalService) GetEntry(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	repoParams := portsrepo.ListEntriesParams{
		PeriodID:  params.PeriodID,
		Limit:     pagination.NormalizeLimit(params.Limit),
		NextToken: params.NextToken,
	}
	if params.Status != nil {
		status := domain.EntryStatus(*params.Status)
		if status != domain.Draft && status != domain.Posted {
			return nil, fmt.Errorf("%w: invalid status filter '%s'", apperrors.ErrValidation, status)
		}
		repoParams.Status = &status
	}
	if params.NextToken != nil {
		if _, err := pagination.DecodeToken(*params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, organizationID, repoParams)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("organization_id", organizationID))
		return nil, err
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	return resp, nil
}

func (s *journalService) AddLineItem(ctx context.Context, organizationID, entryID string, req dto.CreateLineItemRequest) (*domain.JournalEntry, error) {
	line := dto.ToLineItems([]dto.CreateLineItemRequest{req})[0]
	if err := accounting.ValidateLineItems([]domain.JournalLineItem{line}); err != nil {
		return nil, err
	}
	line.LineItemID = uuid.NewString()
	line.EntryID = entryID

	var entry *domain.JournalEntry
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.journalRepo.FindEntryByIDForUpdate(ctx, organizationID, entryID)
		if err != nil {
			return err
		}
		if entry.IsPosted() {
			return fmt.Errorf("%w: %s", apperrors.ErrCannotModifyPosted, entryID)
		}
		if err := s.validateAccounts(ctx, organizationID, []domain.JournalLineItem{line}); err != nil {
			return err
		}
		if err := s.journalRepo.SaveLineItem(ctx, organizationID, line); err != nil {
			return err
		}
		entry.LineItems = append(entry.LineItems, line)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to add line item", slog.String("entry_id", entryID))
		return nil, err
	}
	return entry, nil
}

func (s *journalService) RemoveLineItem(ctx context.Context, organizationID, entryID, lineItemID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.journalRepo.FindEntryByIDForUpdate(ctx, organizationID, entryID)
		if err != nil {
			return err
		}
		if entry.IsPosted() {
			return fmt.Errorf("%w: %s", apperrors.ErrCannotModifyPosted, entryID)
		}

		idx := -1
		for i, l := range entry.LineItems {
			if l.LineItemID == lineItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: line item %s on entry %s", apperrors.ErrNotFound, lineItemID, entryID)
		}
		if err := s.journalRepo.DeleteLineItem(ctx, organizationID, entryID, lineItemID); err != nil {
			return err
		}
		entry.LineItems = append(entry.LineItems[:idx], entry.LineItems[idx+1:]...)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to remove line item", slog.String("entry_id", entryID), slog.String("line_item_id", lineItemID))
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ReverseEntry(ctx context.Context, organizationID, entryID string, entryDate *time.Time, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find entry to reverse", slog.String("entry_id", entryID))
		return nil, err
	}
	if !original.IsPosted() {
		return nil, fmt.Errorf("%w: only posted entries can be reversed; edit or delete the draft instead", apperrors.ErrValidation)
	}

	date := s.Now()
	if entryDate != nil {
		date = *entryDate
	}
	reversed := accounting.ReverseLines(original.LineItems)
	req := dto.CreateEntryRequest{
		EntryDate:   date,
		Description: fmt.Sprintf("Reversal of entry %s", original.EntryID),
		SourceType:  domain.SourceReversal,
		SourceID:    &original.EntryID,
		LineItems:   make([]dto.CreateLineItemRequest, len(reversed)),
	}
	if original.Description != "" {
		req.Description = fmt.Sprintf("Reversal of %s", original.Description)
	}
	for i, l := range reversed {
		req.LineItems[i] = dto.CreateLineItemRequest{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Memo:         l.Memo,
		}
	}

	return s.CreateEntry(ctx, organizationID, req, userID)
}

// openPeriodForDate resolves the covering period and requires it to be open.
func (s *journalService) openPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, organizationID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNoOpenPeriod, date.Format(dto.DateLayout))
		}
		return nil, err
	}
	if !period.IsOpen() {
		return nil, fmt.Errorf("%w: %s covers %s", apperrors.ErrPeriodClosed, period.PeriodID, date.Format(dto.DateLayout))
	}
	return period, nil
}

// validateAccounts requires every referenced account to exist in the organization and be active.
// It runs inside the caller's transaction and holds the account rows until it ends.
func (s *journalService) validateAccounts(ctx context.Context, organizationID string, lines []domain.JournalLineItem) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			ids = append(ids, l.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDsForShare(ctx, organizationID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %s (%s) is inactive", apperrors.ErrUnknownAccount, acc.Code, id)
		}
	}
	return nil
}

// logFailure logs unexpected errors at error level and expected business outcomes at debug.
func (s *journalService) logFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
		s.LogDebug(ctx, msg, append([]any{slog.String("reason", err.Error())}, keyvals...)...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}
