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
	"github.com/shopspring/decimal"
)

// autoPostService derives donation entries and hands them to the journal engine.
type autoPostService struct {
	BaseService
	donationRepo portsrepo.DonationReader
	accountRepo  portsrepo.AccountReader
	periodRepo   portsrepo.PeriodReader
	journalRepo  portsrepo.JournalReader
	journal      portssvc.JournalWriterSvc
}

// NewAutoPostService creates a new auto-poster.
func NewAutoPostService(
	donationRepo portsrepo.DonationReader,
	accountRepo portsrepo.AccountReader,
	periodRepo portsrepo.PeriodReader,
	journalRepo portsrepo.JournalReader,
	journal portssvc.JournalWriterSvc,
	options ...ServiceOption,
) portssvc.AutoPosterSvc {
	return &autoPostService{
		BaseService:  newBaseService(options),
		donationRepo: donationRepo,
		accountRepo:  accountRepo,
		periodRepo:   periodRepo,
		journalRepo:  journalRepo,
		journal:      journal,
	}
}

var _ portssvc.AutoPosterSvc = (*autoPostService)(nil)

// revenueResolver caches revenue account lookups for one run.
type revenueResolver struct {
	repo           portsrepo.AccountReader
	organizationID string
	byFund         map[string]*domain.Account
	byCampaign     map[string]*domain.Account
	general        *domain.Account
}

func (s *autoPostService) PostDonationsToJournal(ctx context.Context, organizationID, createdBy string, req dto.AutoPostRequest) (*dto.AutoPostResult, error) {
	from, to, err := s.resolveRange(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}

	cash, err := s.accountRepo.FindAccountByCode(ctx, organizationID, CashAccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: cash account %s not found; initialize the chart of accounts first", apperrors.ErrValidation, CashAccountCode)
		}
		return nil, err
	}

	donations, err := s.donationRepo.ListDonations(ctx, organizationID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list donations", slog.String("organization_id", organizationID))
		return nil, err
	}

	postEntries := req.PostEntries == nil || *req.PostEntries
	resolver := &revenueResolver{
		repo:           s.accountRepo,
		organizationID: organizationID,
		byFund:         make(map[string]*domain.Account),
		byCampaign:     make(map[string]*domain.Account),
	}
	result := &dto.AutoPostResult{
		EntryIDs: []string{},
		Errors:   []dto.DonationPostingError{},
	}

	for _, donation := range donations {
		outcome, entryID, err := s.postDonation(ctx, organizationID, createdBy, donation, cash, resolver, postEntries)
		switch outcome {
		case donationSkipped:
			result.DonationsSkipped++
		case donationDraftPosted:
			result.DraftsPosted++
		case donationEntryCreated:
			result.EntriesCreated++
			result.EntryIDs = append(result.EntryIDs, entryID)
		}
		if err != nil {
			result.Errors = append(result.Errors, dto.DonationPostingError{DonationID: donation.DonationID, Error: err.Error()})
		}
	}

	s.LogInfo(ctx, "Donations posted to journal",
		slog.String("organization_id", organizationID),
		slog.Int("donations", len(donations)),
		slog.Int("entries_created", result.EntriesCreated),
		slog.Int("drafts_posted", result.DraftsPosted),
		slog.Int("donations_skipped", result.DonationsSkipped),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

type donationOutcome int

const (
	donationFailed donationOutcome = iota
	donationEntryCreated
	donationDraftPosted
	donationSkipped
)

// postDonation reports what happened to one donation. An entry that was created
// but failed to post comes back as donationEntryCreated together with the error.
func (s *autoPostService) postDonation(
	ctx context.Context,
	organizationID, createdBy string,
	donation domain.Donation,
	cash *domain.Account,
	resolver *revenueResolver,
	postEntries bool,
) (donationOutcome, string, error) {
	if !donation.Amount.IsPositive() {
		return donationFailed, "", fmt.Errorf("%w: donation amount %s must be positive", apperrors.ErrValidation, donation.Amount.String())
	}

	existing, err := s.journalRepo.FindEntryBySource(ctx, organizationID, domain.SourceDonation, donation.DonationID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return donationFailed, "", err
	}
	if existing != nil {
		if !postEntries || existing.Status != domain.Draft {
			return donationSkipped, "", nil
		}
		return s.postExistingDraft(ctx, organizationID, createdBy, existing.EntryID)
	}

	revenue, err := resolver.resolve(ctx, donation)
	if err != nil {
		return donationFailed, "", err
	}

	donationID := donation.DonationID
	req := dto.CreateEntryRequest{
		// Entry dates are UTC calendar days, the same clock ListDonations selects by.
		EntryDate:   donation.DonatedAt.UTC(),
		Description: fmt.Sprintf("Donation %s", donationID),
		SourceType:  domain.SourceDonation,
		SourceID:    &donationID,
		LineItems: []dto.CreateLineItemRequest{
			{AccountID: cash.AccountID, DebitAmount: donation.Amount, CreditAmount: decimal.Zero, Memo: "Donation received"},
			{AccountID: revenue.AccountID, DebitAmount: decimal.Zero, CreditAmount: donation.Amount, Memo: revenue.Name},
		},
	}

	entry, err := s.journal.CreateEntry(ctx, organizationID, req, createdBy)
	if err != nil {
		// Lost a race with a concurrent run.
		if errors.Is(err, apperrors.ErrDuplicateSource) {
			return donationSkipped, "", nil
		}
		return donationFailed, "", err
	}

	if postEntries {
		if _, err := s.journal.PostEntry(ctx, organizationID, entry.EntryID, createdBy); err != nil {
			return donationEntryCreated, entry.EntryID, fmt.Errorf("entry %s created but not posted: %w", entry.EntryID, err)
		}
	}
	return donationEntryCreated, entry.EntryID, nil
}

// postExistingDraft finishes a donation whose entry an earlier run created but did not post.
func (s *autoPostService) postExistingDraft(ctx context.Context, organizationID, createdBy, entryID string) (donationOutcome, string, error) {
	if _, err := s.journal.PostEntry(ctx, organizationID, entryID, createdBy); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyPosted) {
			return donationSkipped, "", nil
		}
		return donationFailed, entryID, fmt.Errorf("draft entry %s not posted: %w", entryID, err)
	}
	return donationDraftPosted, entryID, nil
}

func (s *autoPostService) resolveRange(ctx context.Context, organizationID string, req dto.AutoPostRequest) (time.Time, time.Time, error) {
	if req.PeriodID != nil {
		period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, *req.PeriodID)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return domain.DateOnly(period.StartDate), domain.DateOnly(period.EndDate).AddDate(0, 0, 1), nil
	}
	if req.From == nil || req.To == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: either periodID or both from and to are required", apperrors.ErrValidation)
	}
	if !req.To.After(*req.From) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: 'to' must be after 'from'", apperrors.ErrValidation)
	}
	return *req.From, *req.To, nil
}

// resolve picks the fund account, then the campaign account, then general contribution revenue.
func (r *revenueResolver) resolve(ctx context.Context, donation domain.Donation) (*domain.Account, error) {
	if donation.FundID != nil {
		acc, err := r.lookup(ctx, r.byFund, *donation.FundID, r.repo.FindRevenueAccountByFund)
		if err != nil || acc != nil {
			return acc, err
		}
	}
	if donation.CampaignID != nil {
		acc, err := r.lookup(ctx, r.byCampaign, *donation.CampaignID, r.repo.FindRevenueAccountByCampaign)
		if err != nil || acc != nil {
			return acc, err
		}
	}

	if r.general == nil {
		acc, err := r.repo.FindAccountByCode(ctx, r.organizationID, ContributionRevenueAccountCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: contribution revenue account %s not found", apperrors.ErrUnknownAccount, ContributionRevenueAccountCode)
			}
			return nil, err
		}
		r.general = acc
	}
	return r.general, nil
}

// lookup returns nil, nil when no account is tagged with key. Misses are cached too.
func (r *revenueResolver) lookup(
	ctx context.Context,
	cache map[string]*domain.Account,
	key string,
	find func(context.Context, string, string) (*domain.Account, error),
) (*domain.Account, error) {
	if acc, ok := cache[key]; ok {
		return acc, nil
	}
	acc, err := find(ctx, r.organizationID, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		acc = nil
	}
	cache[key] = acc
	return acc, nil
}
