package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/core/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/platform/config"
	"github.com/SscSPs/nonprofit_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)

// LedgerScenarioTestSuite drives the services end to end against the in-memory store.
type LedgerScenarioTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	svc    *portssvc.ServiceContainer
	orgID  string
	userID string

	cash          domain.Account
	contributions domain.Account
	q1            *domain.AccountingPeriod
}

func (suite *LedgerScenarioTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.svc = services.NewServiceContainer(
		&config.Config{WebhookMaxRetries: 3},
		suite.store.Provider(),
		services.WithClock(func() time.Time { return fixedNow }),
	)
	suite.orgID = "org_scenario"
	suite.userID = "user_1"

	cash, err := suite.svc.Account.CreateAccount(suite.ctx, suite.orgID, dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset}, suite.userID)
	suite.Require().NoError(err)
	contributions, err := suite.svc.Account.CreateAccount(suite.ctx, suite.orgID, dto.CreateAccountRequest{Code: "4000", Name: "Contributions", AccountType: domain.Revenue}, suite.userID)
	suite.Require().NoError(err)
	suite.cash, suite.contributions = *cash, *contributions

	suite.q1, err = suite.svc.Period.CreatePeriod(suite.ctx, suite.orgID, dto.CreatePeriodRequest{
		FiscalYear: 2025,
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}, suite.userID)
	suite.Require().NoError(err)
}

func (suite *LedgerScenarioTestSuite) entryRequest(date time.Time, debit, credit string) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntryDate:   date,
		Description: "Gift",
		LineItems: []dto.CreateLineItemRequest{
			{AccountID: suite.cash.AccountID, DebitAmount: decimal.RequireFromString(debit)},
			{AccountID: suite.contributions.AccountID, CreditAmount: decimal.RequireFromString(credit)},
		},
	}
}

func (suite *LedgerScenarioTestSuite) TestBalancedEntry_CreateAndPost() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "100.00", "100.00"), suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.Draft, entry.Status)
	suite.Equal(suite.q1.PeriodID, entry.PeriodID)
	suite.Equal(domain.SourceManual, entry.SourceType)

	posted, err := suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, "approver")
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, posted.Status)
	suite.Require().NotNil(posted.PostedBy)
	suite.Equal("approver", *posted.PostedBy)
	suite.Equal(fixedNow, *posted.PostedAt)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, "approver")
	suite.ErrorIs(err, apperrors.ErrAlreadyPosted)
}

func (suite *LedgerScenarioTestSuite) TestUnbalancedEntry_Rejected() {
	_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "100.00", "99.99"), suite.userID)
	suite.Require().ErrorIs(err, apperrors.ErrUnbalancedEntry)

	var unbalanced *apperrors.UnbalancedEntryError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.Equal("0.01", unbalanced.Delta().StringFixed(2))

	resp, err := suite.svc.Journal.ListEntries(suite.ctx, suite.orgID, dto.ListEntriesParams{})
	suite.Require().NoError(err)
	suite.Empty(resp.Entries, "nothing is persisted for a rejected entry")
}

func (suite *LedgerScenarioTestSuite) TestCreateEntry_NoOpenPeriod() {
	_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "10.00", "10.00"), suite.userID)
	suite.ErrorIs(err, apperrors.ErrNoOpenPeriod)
}

func (suite *LedgerScenarioTestSuite) TestCreateEntry_UnknownOrInactiveAccount() {
	req := suite.entryRequest(fixedNow, "10.00", "10.00")
	req.LineItems[1].AccountID = "missing"
	_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, req, suite.userID)
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)

	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.orgID, suite.contributions.AccountID, suite.userID))
	_, err = suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "10.00", "10.00"), suite.userID)
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
}

func (suite *LedgerScenarioTestSuite) TestClosePeriod_BlockedByDrafts() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "50.00", "50.00"), suite.userID)
	suite.Require().NoError(err)

	_, err = suite.svc.Period.ClosePeriod(suite.ctx, suite.orgID, suite.q1.PeriodID, suite.userID)
	suite.Require().ErrorIs(err, apperrors.ErrDraftsExist)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, suite.userID)
	suite.Require().NoError(err)

	closed, err := suite.svc.Period.ClosePeriod(suite.ctx, suite.orgID, suite.q1.PeriodID, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, closed.Status)

	_, err = suite.svc.Period.ClosePeriod(suite.ctx, suite.orgID, suite.q1.PeriodID, suite.userID)
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)

	_, err = suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "5.00", "5.00"), suite.userID)
	suite.ErrorIs(err, apperrors.ErrPeriodClosed)
}

func (suite *LedgerScenarioTestSuite) TestPostedEntryIsImmutable() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "20.00", "20.00"), suite.userID)
	suite.Require().NoError(err)
	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, suite.userID)
	suite.Require().NoError(err)

	suite.ErrorIs(suite.svc.Journal.DeleteEntry(suite.ctx, suite.orgID, entry.EntryID), apperrors.ErrCannotDeletePosted)
	_, err = suite.svc.Journal.AddLineItem(suite.ctx, suite.orgID, entry.EntryID, dto.CreateLineItemRequest{AccountID: suite.cash.AccountID, DebitAmount: decimal.NewFromInt(1)})
	suite.ErrorIs(err, apperrors.ErrCannotModifyPosted)
	_, err = suite.svc.Journal.RemoveLineItem(suite.ctx, suite.orgID, entry.EntryID, entry.LineItems[0].LineItemID)
	suite.ErrorIs(err, apperrors.ErrCannotModifyPosted)

	stored, err := suite.svc.Journal.GetEntry(suite.ctx, suite.orgID, entry.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, stored.Status)
	suite.Len(stored.LineItems, 2)
}

func (suite *LedgerScenarioTestSuite) TestDraftEditing_RebalancedBeforePost() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "30.00", "30.00"), suite.userID)
	suite.Require().NoError(err)

	edited, err := suite.svc.Journal.AddLineItem(suite.ctx, suite.orgID, entry.EntryID, dto.CreateLineItemRequest{AccountID: suite.cash.AccountID, DebitAmount: decimal.RequireFromString("0.50")})
	suite.Require().NoError(err)
	suite.Len(edited.LineItems, 3)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, suite.userID)
	suite.Require().ErrorIs(err, apperrors.ErrUnbalancedEntry, "posting re-validates the balance")

	edited, err = suite.svc.Journal.RemoveLineItem(suite.ctx, suite.orgID, entry.EntryID, edited.LineItems[2].LineItemID)
	suite.Require().NoError(err)
	suite.Len(edited.LineItems, 2)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, suite.userID)
	suite.NoError(err)
}

func (suite *LedgerScenarioTestSuite) TestDeactivateAccount_InUseOnlyByDrafts() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "10.00", "10.00"), suite.userID)
	suite.Require().NoError(err)

	err = suite.svc.Account.DeactivateAccount(suite.ctx, suite.orgID, suite.cash.AccountID, suite.userID)
	suite.Require().ErrorIs(err, apperrors.ErrAccountInUse)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, suite.userID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.orgID, suite.cash.AccountID, suite.userID))
	acc, err := suite.svc.Account.GetAccountByID(suite.ctx, suite.orgID, suite.cash.AccountID)
	suite.Require().NoError(err)
	suite.False(acc.IsActive)

	suite.NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.orgID, suite.cash.AccountID, suite.userID), "deactivating twice is a no-op")
}

func (suite *LedgerScenarioTestSuite) TestReverseEntry() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "75.00", "75.00"), suite.userID)
	suite.Require().NoError(err)

	_, err = suite.svc.Journal.ReverseEntry(suite.ctx, suite.orgID, entry.EntryID, nil, suite.userID)
	suite.Require().ErrorIs(err, apperrors.ErrValidation, "drafts are edited, not reversed")

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, entry.EntryID, suite.userID)
	suite.Require().NoError(err)

	reversal, err := suite.svc.Journal.ReverseEntry(suite.ctx, suite.orgID, entry.EntryID, nil, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.SourceReversal, reversal.SourceType)
	suite.Equal(entry.EntryID, *reversal.SourceID)
	suite.Equal(domain.DateOnly(fixedNow), reversal.EntryDate)
	for i, line := range reversal.LineItems {
		suite.True(line.DebitAmount.Equal(entry.LineItems[i].CreditAmount))
		suite.True(line.CreditAmount.Equal(entry.LineItems[i].DebitAmount))
	}

	_, err = suite.svc.Journal.ReverseEntry(suite.ctx, suite.orgID, entry.EntryID, nil, suite.userID)
	suite.ErrorIs(err, apperrors.ErrDuplicateSource, "an entry is reversed at most once")
}

func (suite *LedgerScenarioTestSuite) TestTenantIsolation() {
	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "10.00", "10.00"), suite.userID)
	suite.Require().NoError(err)

	_, err = suite.svc.Journal.GetEntry(suite.ctx, "org_other", entry.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.svc.Journal.PostEntry(suite.ctx, "org_other", entry.EntryID, suite.userID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.svc.Period.ClosePeriod(suite.ctx, "org_other", suite.q1.PeriodID, suite.userID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	// Another tenant cannot reference this tenant's accounts either.
	_, err = suite.svc.Period.CreatePeriod(suite.ctx, "org_other", dto.CreatePeriodRequest{FiscalYear: 2025, StartDate: suite.q1.StartDate, EndDate: suite.q1.EndDate}, suite.userID)
	suite.Require().NoError(err)
	_, err = suite.svc.Journal.CreateEntry(suite.ctx, "org_other", suite.entryRequest(fixedNow, "10.00", "10.00"), suite.userID)
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
}

func (suite *LedgerScenarioTestSuite) TestListEntries_FiltersAndPages() {
	for i := 0; i < 3; i++ {
		_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow.AddDate(0, 0, -i), "1.00", "1.00"), suite.userID)
		suite.Require().NoError(err)
	}

	first, err := suite.svc.Journal.ListEntries(suite.ctx, suite.orgID, dto.ListEntriesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Len(first.Entries, 2)
	suite.Require().NotNil(first.NextToken)
	suite.True(first.Entries[0].TotalDebits.Equal(decimal.NewFromInt(1)))

	second, err := suite.svc.Journal.ListEntries(suite.ctx, suite.orgID, dto.ListEntriesParams{Limit: 2, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Len(second.Entries, 1)
	suite.Nil(second.NextToken)

	posted := string(domain.Posted)
	none, err := suite.svc.Journal.ListEntries(suite.ctx, suite.orgID, dto.ListEntriesParams{Status: &posted})
	suite.Require().NoError(err)
	suite.Empty(none.Entries)

	bad := "not-a-token!"
	_, err = suite.svc.Journal.ListEntries(suite.ctx, suite.orgID, dto.ListEntriesParams{NextToken: &bad})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerScenarioTestSuite) TestTrialBalance_PostedOnly() {
	posted, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "100.00", "100.00"), suite.userID)
	suite.Require().NoError(err)
	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.orgID, posted.EntryID, suite.userID)
	suite.Require().NoError(err)
	_, err = suite.svc.Journal.CreateEntry(suite.ctx, suite.orgID, suite.entryRequest(fixedNow, "40.00", "40.00"), suite.userID)
	suite.Require().NoError(err)

	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, suite.orgID, suite.q1.PeriodID)
	suite.Require().NoError(err)
	suite.Require().Len(tb.Lines, 2)
	suite.Equal("1000", tb.Lines[0].Code)
	suite.True(tb.Lines[0].Balance.Equal(decimal.NewFromInt(100)))
	suite.Equal("4000", tb.Lines[1].Code)
	suite.True(tb.Lines[1].Balance.Equal(decimal.NewFromInt(100)))
	suite.True(tb.TotalDebits.Equal(tb.TotalCredits))
	suite.True(tb.TotalDebits.Equal(decimal.NewFromInt(100)))
}

func (suite *LedgerScenarioTestSuite) TestCreatePeriod_Overlap() {
	_, err := suite.svc.Period.CreatePeriod(suite.ctx, suite.orgID, dto.CreatePeriodRequest{
		FiscalYear: 2025,
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrOverlappingPeriod)

	q2, err := suite.svc.Period.CreatePeriod(suite.ctx, suite.orgID, dto.CreatePeriodRequest{
		FiscalYear: 2025,
		StartDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}, suite.userID)
	suite.Require().NoError(err)

	found, err := suite.svc.Period.FindPeriodForDate(suite.ctx, suite.orgID, time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Equal(q2.PeriodID, found.PeriodID)

	_, err = suite.svc.Period.FindPeriodForDate(suite.ctx, suite.orgID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	suite.ErrorIs(err, apperrors.ErrNoOpenPeriod)

	periods, err := suite.svc.Period.ListPeriods(suite.ctx, suite.orgID)
	suite.Require().NoError(err)
	suite.Len(periods, 2)
}

func TestLedgerScenarios(t *testing.T) {
	suite.Run(t, new(LedgerScenarioTestSuite))
}
