package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orgID = "org_1"

func account(id, code string) domain.Account {
	return domain.Account{AccountID: id, OrganizationID: orgID, Code: code, Name: code, AccountType: domain.Asset, IsActive: true}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.SaveAccount(ctx, account("a1", "1000")))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.SaveAccount(ctx, account("a2", "1100")))
		require.NoError(t, store.DeactivateAccount(ctx, orgID, "a1", "u1", time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	accounts, err := store.ListAccounts(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsActive)
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.WithTx(ctx, func(ctx context.Context) error {
		return store.SaveAccounts(ctx, []domain.Account{account("a1", "1000"), account("a2", "2000")})
	})
	require.NoError(t, err)

	accounts, _ := store.ListAccounts(ctx, orgID)
	assert.Len(t, accounts, 2)
}

func TestSaveAccounts_DuplicateCodeIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.SaveAccounts(ctx, []domain.Account{account("a1", "1000"), account("a2", "1000")})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCode)

	accounts, _ := store.ListAccounts(ctx, orgID)
	assert.Empty(t, accounts)
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.SaveAccount(ctx, account("a1", "1000")))

	_, err := store.FindAccountByID(ctx, "org_2", "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	found, err := store.FindAccountsByIDs(ctx, "org_2", []string{"a1"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSavePeriod_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	store := New()
	q1 := domain.AccountingPeriod{
		PeriodID: "p1", OrganizationID: orgID, FiscalYear: 2025, Status: domain.PeriodOpen,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SavePeriod(ctx, q1))

	overlap := q1
	overlap.PeriodID = "p2"
	overlap.StartDate = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	overlap.EndDate = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, store.SavePeriod(ctx, overlap), apperrors.ErrOverlappingPeriod)

	otherOrg := overlap
	otherOrg.OrganizationID = "org_2"
	assert.NoError(t, store.SavePeriod(ctx, otherOrg))
}

func TestPostedEntriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	store := New()
	entry := domain.JournalEntry{
		EntryID: "e1", OrganizationID: orgID, PeriodID: "p1", Status: domain.Draft,
		LineItems: []domain.JournalLineItem{
			{LineItemID: "l1", EntryID: "e1", AccountID: "a1", DebitAmount: decimal.NewFromInt(10)},
			{LineItemID: "l2", EntryID: "e1", AccountID: "a2", CreditAmount: decimal.NewFromInt(10)},
		},
	}
	require.NoError(t, store.SaveEntry(ctx, entry))
	require.NoError(t, store.MarkEntryPosted(ctx, orgID, "e1", "u1", time.Now()))

	assert.ErrorIs(t, store.MarkEntryPosted(ctx, orgID, "e1", "u1", time.Now()), apperrors.ErrAlreadyPosted)
	assert.ErrorIs(t, store.DeleteEntry(ctx, orgID, "e1"), apperrors.ErrCannotDeletePosted)
	assert.ErrorIs(t, store.DeleteLineItem(ctx, orgID, "e1", "l1"), apperrors.ErrCannotModifyPosted)
	assert.ErrorIs(t, store.SaveLineItem(ctx, orgID, domain.JournalLineItem{LineItemID: "l3", EntryID: "e1", AccountID: "a1"}), apperrors.ErrCannotModifyPosted)

	got, err := store.FindEntryByID(ctx, orgID, "e1")
	require.NoError(t, err)
	assert.Len(t, got.LineItems, 2)
}

func TestReturnedEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.SaveEntry(ctx, domain.JournalEntry{
		EntryID: "e1", OrganizationID: orgID, Status: domain.Draft,
		LineItems: []domain.JournalLineItem{{LineItemID: "l1", AccountID: "a1", DebitAmount: decimal.NewFromInt(1)}},
	}))

	got, _ := store.FindEntryByID(ctx, orgID, "e1")
	got.LineItems[0].AccountID = "tampered"

	again, _ := store.FindEntryByID(ctx, orgID, "e1")
	assert.Equal(t, "a1", again.LineItems[0].AccountID)
}

func TestListEntries_Paginates(t *testing.T) {
	ctx := context.Background()
	store := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveEntry(ctx, domain.JournalEntry{
			EntryID:        fmt.Sprintf("e%d", i),
			OrganizationID: orgID,
			EntryDate:      base.AddDate(0, 0, i),
			CreatedAt:      base,
			Status:         domain.Draft,
		}))
	}

	var seen []string
	var token *string
	for page := 0; page < 3; page++ {
		entries, next, err := store.ListEntries(ctx, orgID, portsrepo.ListEntriesParams{Limit: 2, NextToken: token})
		require.NoError(t, err)
		for _, e := range entries {
			seen = append(seen, e.EntryID)
		}
		token = next
		if next == nil {
			break
		}
	}
	assert.Equal(t, []string{"e4", "e3", "e2", "e1", "e0"}, seen)
	assert.Nil(t, token)
}

func TestInsertEventIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := New()
	event := domain.WebhookEvent{ID: "1", WebhookEventID: "evt_1", Status: domain.WebhookReceived, EventType: "payment.succeeded"}

	stored, inserted, err := store.InsertEventIfAbsent(ctx, event)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "1", stored.ID)

	event.ID = "2"
	stored, inserted, err = store.InsertEventIfAbsent(ctx, event)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "1", stored.ID, "the original row is returned")
}

func TestClaimEvent_SingleWinnerAndLeaseFencing(t *testing.T) {
	ctx := context.Background()
	store := New()
	t0 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	_, _, err := store.InsertEventIfAbsent(ctx, domain.WebhookEvent{ID: "1", WebhookEventID: "evt_1", Status: domain.WebhookReceived, CreatedAt: t0, UpdatedAt: t0})
	require.NoError(t, err)
	require.NoError(t, store.MarkEventFailed(ctx, "evt_1", &t0, "boom", true, t0))

	claimAt := t0.Add(time.Minute)
	claimed, ok, err := store.ClaimEvent(ctx, "evt_1", 3, claimAt.Add(-5*time.Minute), claimAt)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.WebhookReceived, claimed.Status)

	_, ok, err = store.ClaimEvent(ctx, "evt_1", 3, claimAt.Add(-5*time.Minute), claimAt)
	require.NoError(t, err)
	assert.False(t, ok, "a live claim cannot be taken twice")

	err = store.MarkEventProcessed(ctx, "evt_1", &t0, nil, claimAt)
	assert.ErrorIs(t, err, apperrors.ErrEventNotClaimed, "the first run's lease is gone")
	require.NoError(t, store.MarkEventProcessed(ctx, "evt_1", &claimAt, nil, claimAt))

	_, ok, err = store.ClaimEvent(ctx, "evt_1", 3, claimAt.Add(time.Hour), claimAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "processed events are never claimed")

	retryable, err := store.ListRetryableEvents(ctx, 3, claimAt.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, retryable)
}

func TestListDonations_HalfOpenRange(t *testing.T) {
	ctx := context.Background()
	store := New()
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.AddDonation(domain.Donation{DonationID: "d1", OrganizationID: orgID, Amount: decimal.NewFromInt(5), DonatedAt: jan1})
	store.AddDonation(domain.Donation{DonationID: "d2", OrganizationID: orgID, Amount: decimal.NewFromInt(5), DonatedAt: jan1.AddDate(0, 1, 0)})
	store.AddDonation(domain.Donation{DonationID: "d3", OrganizationID: "org_2", Amount: decimal.NewFromInt(5), DonatedAt: jan1})

	donations, err := store.ListDonations(ctx, orgID, jan1, jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, "d1", donations[0].DonationID)
}
