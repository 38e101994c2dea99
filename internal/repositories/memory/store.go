// Package memory is an in-process implementation of every repository port. It
// backs tests and STORAGE_DRIVER=memory for local development.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type txKey struct{}

// Store keeps all ledger state in maps guarded by one mutex. A transaction holds
// the mutex for its whole duration, so transactions are fully serialized.
type Store struct {
	mu sync.Mutex

	accounts  map[string]domain.Account
	periods   map[string]domain.AccountingPeriod
	entries   map[string]domain.JournalEntry
	donations map[string]domain.Donation
	webhooks  map[string]domain.WebhookEvent // keyed by WebhookEventID
}

type snapshot struct {
	accounts  map[string]domain.Account
	periods   map[string]domain.AccountingPeriod
	entries   map[string]domain.JournalEntry
	donations map[string]domain.Donation
	webhooks  map[string]domain.WebhookEvent
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		periods:   make(map[string]domain.AccountingPeriod),
		entries:   make(map[string]domain.JournalEntry),
		donations: make(map[string]domain.Donation),
		webhooks:  make(map[string]domain.WebhookEvent),
	}
}

var (
	_ portsrepo.TransactionManager      = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.PeriodRepositoryFacade  = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.DonationReader          = (*Store)(nil)
	_ portsrepo.WebhookEventRepository  = (*Store)(nil)
	_ portsrepo.ReportingRepository     = (*Store)(nil)
)

// Provider wires the store into every repository slot.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:     s,
		AccountRepo:   s,
		PeriodRepo:    s,
		JournalRepo:   s,
		DonationRepo:  s,
		WebhookRepo:   s,
		ReportingRepo: s,
	}
}

// --- Transactions ---

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock acquires the mutex unless ctx already belongs to a running transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTx serializes fn against every other store call and restores the
// pre-transaction state if fn fails. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		accounts:  make(map[string]domain.Account, len(s.accounts)),
		periods:   make(map[string]domain.AccountingPeriod, len(s.periods)),
		entries:   make(map[string]domain.JournalEntry, len(s.entries)),
		donations: make(map[string]domain.Donation, len(s.donations)),
		webhooks:  make(map[string]domain.WebhookEvent, len(s.webhooks)),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.periods {
		snap.periods[k] = v
	}
	for k, v := range s.entries {
		snap.entries[k] = cloneEntry(v)
	}
	for k, v := range s.donations {
		snap.donations[k] = v
	}
	for k, v := range s.webhooks {
		snap.webhooks[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.periods = snap.periods
	s.entries = snap.entries
	s.donations = snap.donations
	s.webhooks = snap.webhooks
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.JournalLineItem, len(e.LineItems))
	copy(lines, e.LineItems)
	e.LineItems = lines
	return e
}

// --- Accounts ---

func (s *Store) FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	defer s.lock(ctx)()
	acc, ok := s.accounts[accountID]
	if !ok || acc.OrganizationID != organizationID {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return &acc, nil
}

func (s *Store) FindAccountByIDForUpdate(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	return s.FindAccountByID(ctx, organizationID, accountID)
}

func (s *Store) FindAccountByCode(ctx context.Context, organizationID, code string) (*domain.Account, error) {
	defer s.lock(ctx)()
	for _, acc := range s.accounts {
		if acc.OrganizationID == organizationID && acc.Code == code {
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("account code %s: %w", code, apperrors.ErrNotFound)
}

func (s *Store) FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	defer s.lock(ctx)()
	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok && acc.OrganizationID == organizationID {
			result[id] = acc
		}
	}
	return result, nil
}

// FindAccountsByIDsForShare needs no row locks here: transactions are already serialized.
func (s *Store) FindAccountsByIDsForShare(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	return s.FindAccountsByIDs(ctx, organizationID, accountIDs)
}

func (s *Store) ListAccounts(ctx context.Context, organizationID string) ([]domain.Account, error) {
	defer s.lock(ctx)()
	result := make([]domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.OrganizationID == organizationID {
			result = append(result, acc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (s *Store) findRevenueAccount(organizationID string, match func(domain.Account) bool) *domain.Account {
	var found *domain.Account
	for _, acc := range s.accounts {
		if acc.OrganizationID != organizationID || acc.AccountType != domain.Revenue || !acc.IsActive || !match(acc) {
			continue
		}
		// Lowest code wins when several accounts carry the same tag.
		if found == nil || acc.Code < found.Code {
			a := acc
			found = &a
		}
	}
	return found
}

func (s *Store) FindRevenueAccountByFund(ctx context.Context, organizationID, fundID string) (*domain.Account, error) {
	defer s.lock(ctx)()
	acc := s.findRevenueAccount(organizationID, func(a domain.Account) bool { return a.FundID != nil && *a.FundID == fundID })
	if acc == nil {
		return nil, fmt.Errorf("revenue account for fund %s: %w", fundID, apperrors.ErrNotFound)
	}
	return acc, nil
}

func (s *Store) FindRevenueAccountByCampaign(ctx context.Context, organizationID, campaignID string) (*domain.Account, error) {
	defer s.lock(ctx)()
	acc := s.findRevenueAccount(organizationID, func(a domain.Account) bool { return a.CampaignID != nil && *a.CampaignID == campaignID })
	if acc == nil {
		return nil, fmt.Errorf("revenue account for campaign %s: %w", campaignID, apperrors.ErrNotFound)
	}
	return acc, nil
}

func (s *Store) saveAccount(account domain.Account) error {
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	for _, acc := range s.accounts {
		if acc.OrganizationID == account.OrganizationID && acc.Code == account.Code {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, account.Code)
		}
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	defer s.lock(ctx)()
	return s.saveAccount(account)
}

func (s *Store) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		for _, acc := range accounts {
			if err := s.saveAccount(acc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeactivateAccount(ctx context.Context, organizationID, accountID, userID string, now time.Time) error {
	defer s.lock(ctx)()
	acc, ok := s.accounts[accountID]
	if !ok || acc.OrganizationID != organizationID {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	acc.IsActive = false
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = userID
	s.accounts[accountID] = acc
	return nil
}

func (s *Store) CountDraftReferences(ctx context.Context, organizationID, accountID string) (int, error) {
	defer s.lock(ctx)()
	count := 0
	for _, e := range s.entries {
		if e.OrganizationID != organizationID || e.Status != domain.Draft {
			continue
		}
		for _, l := range e.LineItems {
			if l.AccountID == accountID {
				count++
			}
		}
	}
	return count, nil
}

// --- Periods ---

func (s *Store) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	p, ok := s.periods[periodID]
	if !ok || p.OrganizationID != organizationID {
		return nil, fmt.Errorf("period %s: %w", periodID, apperrors.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) FindPeriodByIDForUpdate(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	return s.FindPeriodByID(ctx, organizationID, periodID)
}

func (s *Store) FindPeriodByIDForShare(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	return s.FindPeriodByID(ctx, organizationID, periodID)
}

func (s *Store) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	for _, p := range s.periods {
		if p.OrganizationID == organizationID && p.Contains(date) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("period for %s: %w", date.Format("2006-01-02"), apperrors.ErrNotFound)
}

func (s *Store) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time) ([]domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	return s.overlapping(organizationID, start, end), nil
}

func (s *Store) overlapping(organizationID string, start, end time.Time) []domain.AccountingPeriod {
	result := make([]domain.AccountingPeriod, 0)
	for _, p := range s.periods {
		if p.OrganizationID == organizationID && p.Overlaps(start, end) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result
}

func (s *Store) ListPeriods(ctx context.Context, organizationID string) ([]domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	result := make([]domain.AccountingPeriod, 0)
	for _, p := range s.periods {
		if p.OrganizationID == organizationID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (s *Store) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	defer s.lock(ctx)()
	// Mirrors the exclusion constraint on accounting_periods.
	if len(s.overlapping(period.OrganizationID, period.StartDate, period.EndDate)) > 0 {
		return apperrors.ErrOverlappingPeriod
	}
	s.periods[period.PeriodID] = period
	return nil
}

func (s *Store) MarkPeriodClosed(ctx context.Context, organizationID, periodID, closedBy string, closedAt time.Time) error {
	defer s.lock(ctx)()
	p, ok := s.periods[periodID]
	if !ok || p.OrganizationID != organizationID {
		return fmt.Errorf("period %s: %w", periodID, apperrors.ErrNotFound)
	}
	if !p.IsOpen() {
		return apperrors.ErrAlreadyClosed
	}
	p.Status = domain.PeriodClosed
	p.ClosedBy = &closedBy
	p.ClosedAt = &closedAt
	p.LastUpdatedAt = closedAt
	p.LastUpdatedBy = closedBy
	s.periods[periodID] = p
	return nil
}

// --- Journal ---

func (s *Store) findEntry(organizationID, entryID string) (domain.JournalEntry, error) {
	e, ok := s.entries[entryID]
	if !ok || e.OrganizationID != organizationID {
		return domain.JournalEntry{}, fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	return e, nil
}

func (s *Store) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	defer s.lock(ctx)()
	e, err := s.findEntry(organizationID, entryID)
	if err != nil {
		return nil, err
	}
	c := cloneEntry(e)
	return &c, nil
}

func (s *Store) FindEntryByIDForUpdate(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	return s.FindEntryByID(ctx, organizationID, entryID)
}

func (s *Store) FindEntryBySource(ctx context.Context, organizationID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	defer s.lock(ctx)()
	for _, e := range s.entries {
		if e.OrganizationID == organizationID && e.SourceType == sourceType && e.SourceID != nil && *e.SourceID == sourceID {
			c := cloneEntry(e)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("journal entry for %s %s: %w", sourceType, sourceID, apperrors.ErrNotFound)
}

func (s *Store) ListEntries(ctx context.Context, organizationID string, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	defer s.lock(ctx)()

	var cursor *pagination.Cursor
	if params.NextToken != nil {
		c, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		cursor = &c
	}

	matched := make([]domain.JournalEntry, 0)
	for _, e := range s.entries {
		if e.OrganizationID != organizationID {
			continue
		}
		if params.PeriodID != nil && e.PeriodID != *params.PeriodID {
			continue
		}
		if params.Status != nil && e.Status != *params.Status {
			continue
		}
		if cursor != nil && !cursor.After(e.EntryDate, e.CreatedAt, e.EntryID) {
			continue
		}
		matched = append(matched, cloneEntry(e))
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		return cursorOf(a).After(b.EntryDate, b.CreatedAt, b.EntryID)
	})

	limit := pagination.NormalizeLimit(params.Limit)
	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(cursorOf(last))
	return page, &token, nil
}

func cursorOf(e domain.JournalEntry) pagination.Cursor {
	return pagination.Cursor{EntryDate: e.EntryDate, CreatedAt: e.CreatedAt, EntryID: e.EntryID}
}

func (s *Store) CountDraftsInPeriod(ctx context.Context, organizationID, periodID string) (int, error) {
	defer s.lock(ctx)()
	count := 0
	for _, e := range s.entries {
		if e.OrganizationID == organizationID && e.PeriodID == periodID && e.Status == domain.Draft {
			count++
		}
	}
	return count, nil
}

func (s *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	defer s.lock(ctx)()
	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	if entry.SourceID != nil {
		for _, e := range s.entries {
			if e.OrganizationID == entry.OrganizationID && e.SourceType == entry.SourceType && e.SourceID != nil && *e.SourceID == *entry.SourceID {
				return apperrors.ErrDuplicateSource
			}
		}
	}
	s.entries[entry.EntryID] = cloneEntry(entry)
	return nil
}

func (s *Store) MarkEntryPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error {
	defer s.lock(ctx)()
	e, err := s.findEntry(organizationID, entryID)
	if err != nil {
		return err
	}
	if e.IsPosted() {
		return apperrors.ErrAlreadyPosted
	}
	e.Status = domain.Posted
	e.PostedBy = &postedBy
	e.PostedAt = &postedAt
	s.entries[entryID] = e
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, organizationID, entryID string) error {
	defer s.lock(ctx)()
	e, err := s.findEntry(organizationID, entryID)
	if err != nil {
		return err
	}
	if e.IsPosted() {
		return apperrors.ErrCannotDeletePosted
	}
	delete(s.entries, entryID)
	return nil
}

func (s *Store) SaveLineItem(ctx context.Context, organizationID string, line domain.JournalLineItem) error {
	defer s.lock(ctx)()
	e, err := s.findEntry(organizationID, line.EntryID)
	if err != nil {
		return err
	}
	if e.IsPosted() {
		return apperrors.ErrCannotModifyPosted
	}
	e = cloneEntry(e)
	e.LineItems = append(e.LineItems, line)
	s.entries[e.EntryID] = e
	return nil
}

func (s *Store) DeleteLineItem(ctx context.Context, organizationID, entryID, lineItemID string) error {
	defer s.lock(ctx)()
	e, err := s.findEntry(organizationID, entryID)
	if err != nil {
		return err
	}
	if e.IsPosted() {
		return apperrors.ErrCannotModifyPosted
	}
	lines := make([]domain.JournalLineItem, 0, len(e.LineItems))
	for _, l := range e.LineItems {
		if l.LineItemID != lineItemID {
			lines = append(lines, l)
		}
	}
	if len(lines) == len(e.LineItems) {
		return fmt.Errorf("line item %s: %w", lineItemID, apperrors.ErrNotFound)
	}
	e.LineItems = lines
	s.entries[entryID] = e
	return nil
}

// --- Donations ---

// AddDonation seeds the donation feed. The ledger itself never writes donations.
func (s *Store) AddDonation(donation domain.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations[donation.DonationID] = donation
}

func (s *Store) ListDonations(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Donation, error) {
	defer s.lock(ctx)()
	result := make([]domain.Donation, 0)
	for _, d := range s.donations {
		if d.OrganizationID == organizationID && !d.DonatedAt.Before(from) && d.DonatedAt.Before(to) {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DonatedAt.Equal(result[j].DonatedAt) {
			return result[i].DonationID < result[j].DonationID
		}
		return result[i].DonatedAt.Before(result[j].DonatedAt)
	})
	return result, nil
}

// --- Webhook events ---

func (s *Store) InsertEventIfAbsent(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookEvent, bool, error) {
	defer s.lock(ctx)()
	if existing, ok := s.webhooks[event.WebhookEventID]; ok {
		return &existing, false, nil
	}
	s.webhooks[event.WebhookEventID] = event
	return &event, true, nil
}

func (s *Store) FindEventByWebhookID(ctx context.Context, webhookEventID string) (*domain.WebhookEvent, error) {
	defer s.lock(ctx)()
	e, ok := s.webhooks[webhookEventID]
	if !ok {
		return nil, fmt.Errorf("webhook event %s: %w", webhookEventID, apperrors.ErrNotFound)
	}
	return &e, nil
}

func retryable(e domain.WebhookEvent, maxRetries int, staleBefore time.Time) bool {
	switch e.Status {
	case domain.WebhookFailed:
		return e.RetryCount < maxRetries
	case domain.WebhookReceived:
		return e.UpdatedAt.Before(staleBefore)
	}
	return false
}

func (s *Store) ClaimEvent(ctx context.Context, webhookEventID string, maxRetries int, staleBefore, claimedAt time.Time) (*domain.WebhookEvent, bool, error) {
	defer s.lock(ctx)()
	e, ok := s.webhooks[webhookEventID]
	if !ok || !retryable(e, maxRetries, staleBefore) {
		return nil, false, nil
	}
	e.Status = domain.WebhookReceived
	e.UpdatedAt = claimedAt
	s.webhooks[webhookEventID] = e
	return &e, true, nil
}

// claimed returns the event when it is received and, given a lease, still held under it.
func (s *Store) claimed(webhookEventID string, lease *time.Time) (domain.WebhookEvent, error) {
	e, ok := s.webhooks[webhookEventID]
	if !ok {
		return e, fmt.Errorf("webhook event %s: %w", webhookEventID, apperrors.ErrNotFound)
	}
	if e.Status != domain.WebhookReceived || (lease != nil && !e.UpdatedAt.Equal(*lease)) {
		return e, fmt.Errorf("webhook event %s is %s: %w", webhookEventID, e.Status, apperrors.ErrEventNotClaimed)
	}
	return e, nil
}

func (s *Store) MarkEventProcessed(ctx context.Context, webhookEventID string, lease *time.Time, result json.RawMessage, processedAt time.Time) error {
	defer s.lock(ctx)()
	e, err := s.claimed(webhookEventID, lease)
	if err != nil {
		return err
	}
	e.Status = domain.WebhookProcessed
	e.ProcessedAt = &processedAt
	e.ProcessingResult = result
	e.ErrorMessage = nil
	e.UpdatedAt = processedAt
	s.webhooks[webhookEventID] = e
	return nil
}

func (s *Store) MarkEventFailed(ctx context.Context, webhookEventID string, lease *time.Time, errorMessage string, incrementRetry bool, failedAt time.Time) error {
	defer s.lock(ctx)()
	e, err := s.claimed(webhookEventID, lease)
	if err != nil {
		return err
	}
	e.Status = domain.WebhookFailed
	e.ErrorMessage = &errorMessage
	if incrementRetry {
		e.RetryCount++
	}
	e.UpdatedAt = failedAt
	s.webhooks[webhookEventID] = e
	return nil
}

func (s *Store) ListRetryableEvents(ctx context.Context, maxRetries int, staleBefore time.Time, limit int) ([]domain.WebhookEvent, error) {
	defer s.lock(ctx)()
	result := make([]domain.WebhookEvent, 0)
	for _, e := range s.webhooks {
		if retryable(e, maxRetries, staleBefore) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) DeleteEventsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	defer s.lock(ctx)()
	var deleted int64
	for id, e := range s.webhooks {
		if e.CreatedAt.Before(cutoff) {
			delete(s.webhooks, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- Reporting ---

func (s *Store) PostedTotalsByAccount(ctx context.Context, organizationID, periodID string) ([]domain.AccountTotals, error) {
	defer s.lock(ctx)()
	byAccount := make(map[string]*domain.AccountTotals)
	for _, e := range s.entries {
		if e.OrganizationID != organizationID || e.PeriodID != periodID || !e.IsPosted() {
			continue
		}
		for _, l := range e.LineItems {
			t, ok := byAccount[l.AccountID]
			if !ok {
				t = &domain.AccountTotals{AccountID: l.AccountID, Debits: decimal.Zero, Credits: decimal.Zero}
				byAccount[l.AccountID] = t
			}
			t.Debits = t.Debits.Add(l.DebitAmount)
			t.Credits = t.Credits.Add(l.CreditAmount)
		}
	}
	result := make([]domain.AccountTotals, 0, len(byAccount))
	for _, t := range byAccount {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AccountID < result[j].AccountID })
	return result, nil
}
