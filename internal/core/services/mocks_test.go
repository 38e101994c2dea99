package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the unit of work without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) accountOrNil(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	return m.accountOrNil(m.Called(ctx, organizationID, accountID))
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, organizationID, code string) (*domain.Account, error) {
	return m.accountOrNil(m.Called(ctx, organizationID, code))
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, organizationID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDsForShare(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, organizationID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, organizationID string) ([]domain.Account, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindRevenueAccountByFund(ctx context.Context, organizationID, fundID string) (*domain.Account, error) {
	return m.accountOrNil(m.Called(ctx, organizationID, fundID))
}

func (m *MockAccountRepository) FindRevenueAccountByCampaign(ctx context.Context, organizationID, campaignID string) (*domain.Account, error) {
	return m.accountOrNil(m.Called(ctx, organizationID, campaignID))
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	return m.Called(ctx, accounts).Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, organizationID, accountID, userID string, now time.Time) error {
	return m.Called(ctx, organizationID, accountID, userID, now).Error(0)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	return m.accountOrNil(m.Called(ctx, organizationID, accountID))
}

func (m *MockAccountRepository) CountDraftReferences(ctx context.Context, organizationID, accountID string) (int, error) {
	args := m.Called(ctx, organizationID, accountID)
	return args.Int(0), args.Error(1)
}

// MockJournalRepository is a mock type for the JournalRepositoryFacade interface
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) entryOrNil(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	return m.entryOrNil(m.Called(ctx, organizationID, entryID))
}

func (m *MockJournalRepository) FindEntryBySource(ctx context.Context, organizationID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	return m.entryOrNil(m.Called(ctx, organizationID, sourceType, sourceID))
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, organizationID string, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, organizationID, params)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockJournalRepository) CountDraftsInPeriod(ctx context.Context, organizationID, periodID string) (int, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Int(0), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) MarkEntryPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error {
	return m.Called(ctx, organizationID, entryID, postedBy, postedAt).Error(0)
}

func (m *MockJournalRepository) DeleteEntry(ctx context.Context, organizationID, entryID string) error {
	return m.Called(ctx, organizationID, entryID).Error(0)
}

func (m *MockJournalRepository) SaveLineItem(ctx context.Context, organizationID string, line domain.JournalLineItem) error {
	return m.Called(ctx, organizationID, line).Error(0)
}

func (m *MockJournalRepository) DeleteLineItem(ctx context.Context, organizationID, entryID, lineItemID string) error {
	return m.Called(ctx, organizationID, entryID, lineItemID).Error(0)
}

func (m *MockJournalRepository) FindEntryByIDForUpdate(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	return m.entryOrNil(m.Called(ctx, organizationID, entryID))
}

// MockPeriodRepository is a mock type for the PeriodRepositoryFacade interface
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) periodOrNil(args mock.Arguments) (*domain.AccountingPeriod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	return m.periodOrNil(m.Called(ctx, organizationID, periodID))
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.AccountingPeriod, error) {
	return m.periodOrNil(m.Called(ctx, organizationID, date))
}

func (m *MockPeriodRepository) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, organizationID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, organizationID string) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	return m.Called(ctx, period).Error(0)
}

func (m *MockPeriodRepository) MarkPeriodClosed(ctx context.Context, organizationID, periodID, closedBy string, closedAt time.Time) error {
	return m.Called(ctx, organizationID, periodID, closedBy, closedAt).Error(0)
}

func (m *MockPeriodRepository) FindPeriodByIDForUpdate(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	return m.periodOrNil(m.Called(ctx, organizationID, periodID))
}

func (m *MockPeriodRepository) FindPeriodByIDForShare(ctx context.Context, organizationID, periodID string) (*domain.AccountingPeriod, error) {
	return m.periodOrNil(m.Called(ctx, organizationID, periodID))
}

var (
	_ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)
	_ portsrepo.PeriodRepositoryFacade  = (*MockPeriodRepository)(nil)
	_ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)
)
