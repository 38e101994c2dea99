package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/core/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/handlers"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/SscSPs/nonprofit_ledger/internal/platform/config"
	"github.com/SscSPs/nonprofit_ledger/internal/repositories/memory"
	"github.com/SscSPs/nonprofit_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

var apiNow = time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)

// LedgerAPITestSuite exercises the full router against the in-memory store.
type LedgerAPITestSuite struct {
	suite.Suite
	router   *gin.Engine
	store    *memory.Store
	services *portssvc.ServiceContainer
	cfg      *config.Config
	orgID    string
	userID   string
}

func (suite *LedgerAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()

	suite.cfg = &config.Config{
		JWTSecret:            "api-test-secret-key-that-is-long-enough",
		WebhookSigningSecret: "whsec_test",
		WebhookMaxRetries:    3,
		IsProduction:         true,
	}
	suite.store = memory.New()
	suite.services = services.NewServiceContainer(suite.cfg, suite.store.Provider(),
		services.WithClock(func() time.Time { return apiNow }))
	suite.orgID = "org_api"
	suite.userID = "user_api"

	rate, err := limiter.NewRateFromFormatted("3-M")
	suite.Require().NoError(err)
	webhookLimiter := limiter.New(memorystore.NewStore(), rate)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, suite.cfg, suite.services, webhookLimiter, &utils.PosthogClientWrapper{})
}

func (suite *LedgerAPITestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	tok, err := generateTestToken(suite.cfg.JWTSecret, suite.userID, suite.orgID)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerAPITestSuite) deliver(applicationID string, body []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/webhooks/"+applicationID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(middleware.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerAPITestSuite) createAccount(code, name string, accountType domain.AccountType) dto.AccountResponse {
	w := suite.request(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Code: code, Name: name, AccountType: accountType})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var acc dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &acc))
	return acc
}

func (suite *LedgerAPITestSuite) createQ1() dto.PeriodResponse {
	w := suite.request(http.MethodPost, "/api/v1/periods", dto.CreatePeriodRequest{
		FiscalYear: 2025,
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var p dto.PeriodResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func entryBody(cashID, revenueID, debit, credit string) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntryDate:   time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Description: "Gala ticket",
		LineItems: []dto.CreateLineItemRequest{
			{AccountID: cashID, DebitAmount: decimal.RequireFromString(debit)},
			{AccountID: revenueID, CreditAmount: decimal.RequireFromString(credit)},
		},
	}
}

func (suite *LedgerAPITestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *LedgerAPITestSuite) TestJournalLifecycle() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	revenue := suite.createAccount("4000", "Contributions", domain.Revenue)
	period := suite.createQ1()

	// Unbalanced entries are rejected with their totals.
	w := suite.request(http.MethodPost, "/api/v1/journal-entries", entryBody(cash.AccountID, revenue.AccountID, "100.00", "99.99"))
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	var errBody map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &errBody))
	suite.Equal("100.00", errBody["totalDebits"])
	suite.Equal("99.99", errBody["totalCredits"])
	suite.Equal("0.01", errBody["delta"])

	w = suite.request(http.MethodPost, "/api/v1/journal-entries", entryBody(cash.AccountID, revenue.AccountID, "250.00", "250.00"))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &entry))
	suite.Equal(domain.Draft, entry.Status)
	suite.Equal(period.PeriodID, entry.PeriodID)
	suite.Len(entry.LineItems, 2)

	// Drafts block closing.
	w = suite.request(http.MethodPost, "/api/v1/periods/"+period.PeriodID+"/close", nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/journal-entries/"+entry.EntryID, nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/periods/"+period.PeriodID+"/trial-balance", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tb domain.TrialBalance
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tb))
	suite.True(tb.TotalDebits.Equal(decimal.NewFromInt(250)))
	suite.True(tb.TotalCredits.Equal(tb.TotalDebits))

	w = suite.request(http.MethodPost, "/api/v1/periods/"+period.PeriodID+"/close", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var closed dto.PeriodResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &closed))
	suite.Equal(domain.PeriodClosed, closed.Status)

	w = suite.request(http.MethodPost, "/api/v1/journal-entries", entryBody(cash.AccountID, revenue.AccountID, "5.00", "5.00"))
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *LedgerAPITestSuite) TestCreateEntry_NoOpenPeriod() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	revenue := suite.createAccount("4000", "Contributions", domain.Revenue)

	w := suite.request(http.MethodPost, "/api/v1/journal-entries", entryBody(cash.AccountID, revenue.AccountID, "10.00", "10.00"))
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "no accounting period")
}

func (suite *LedgerAPITestSuite) TestCreateEntry_SingleLineRejectedByBinding() {
	body := map[string]any{
		"entryDate": "2025-02-10T00:00:00Z",
		"lineItems": []map[string]string{{"accountID": "acc", "debitAmount": "1.00"}},
	}
	w := suite.request(http.MethodPost, "/api/v1/journal-entries", body)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *LedgerAPITestSuite) TestListEntries_Pagination() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	revenue := suite.createAccount("4000", "Contributions", domain.Revenue)
	suite.createQ1()
	for i := 0; i < 3; i++ {
		w := suite.request(http.MethodPost, "/api/v1/journal-entries", entryBody(cash.AccountID, revenue.AccountID, "1.00", "1.00"))
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	w := suite.request(http.MethodGet, "/api/v1/journal-entries?limit=2", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	suite.Len(page.Entries, 2)
	suite.Require().NotNil(page.NextToken)

	w = suite.request(http.MethodGet, "/api/v1/journal-entries?limit=2&nextToken="+url.QueryEscape(*page.NextToken), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var second dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &second))
	suite.Len(second.Entries, 1)
	suite.Nil(second.NextToken)

	w = suite.request(http.MethodGet, "/api/v1/journal-entries?status=void", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *LedgerAPITestSuite) TestAutoPostDonations() {
	w := suite.request(http.MethodPost, "/api/v1/accounts/initialize", dto.InitializeChartRequest{OrganizationType: "general"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	period := suite.createQ1()

	suite.store.AddDonation(domain.Donation{
		DonationID:     "don_1",
		OrganizationID: suite.orgID,
		Amount:         decimal.RequireFromString("40.00"),
		DonatedAt:      time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC),
	})

	w = suite.request(http.MethodPost, "/api/v1/donations/auto-post", dto.AutoPostRequest{PeriodID: &period.PeriodID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result dto.AutoPostResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	suite.Equal(1, result.EntriesCreated)
	suite.Empty(result.Errors)

	w = suite.request(http.MethodPost, "/api/v1/donations/auto-post", dto.AutoPostRequest{PeriodID: &period.PeriodID})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	suite.Equal(0, result.EntriesCreated)
	suite.Equal(1, result.DonationsSkipped)
}

func (suite *LedgerAPITestSuite) TestWebhook_SignatureRequired() {
	body := []byte(`{"webhookEventId":"evt_1","eventType":"payment.succeeded","payload":{"amount":10}}`)

	w := suite.deliver("stripe", body, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.deliver("stripe", body, middleware.SignWebhookBody("wrong-secret", body))
	suite.Equal(http.StatusUnauthorized, w.Code)

	processed, err := suite.services.Webhook.IsProcessed(context.Background(), "evt_1")
	suite.NoError(err)
	suite.False(processed)
}

func (suite *LedgerAPITestSuite) TestWebhook_DuplicateDelivery() {
	body := []byte(`{"webhookEventId":"evt_2","eventType":"payment.succeeded","payload":{"amount":10}}`)
	sig := middleware.SignWebhookBody(suite.cfg.WebhookSigningSecret, body)

	calls := 0
	suite.services.Webhook.RegisterHandler("payment.succeeded", func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"ok":true}`), nil
	})

	w := suite.deliver("stripe", body, sig)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var first dto.WebhookDeliveryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &first))
	suite.True(first.IsNew)
	suite.Equal(domain.WebhookProcessed, first.Status)

	w = suite.deliver("stripe", body, sig)
	suite.Require().Equal(http.StatusOK, w.Code)
	var second dto.WebhookDeliveryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &second))
	suite.False(second.IsNew)
	suite.Equal(1, calls)
}

func (suite *LedgerAPITestSuite) TestWebhook_HandlerFailureAsksForRedelivery() {
	body := []byte(`{"webhookEventId":"evt_3","eventType":"payment.failed","payload":{}}`)
	sig := middleware.SignWebhookBody(suite.cfg.WebhookSigningSecret, body)
	suite.services.Webhook.RegisterHandler("payment.failed", func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		return nil, errors.New("crm unavailable")
	})

	w := suite.deliver("stripe", body, sig)
	suite.Equal(http.StatusInternalServerError, w.Code)
	var resp dto.WebhookDeliveryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.WebhookFailed, resp.Status)

	w = suite.request(http.MethodGet, "/api/v1/webhook-events/retryable", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var events []dto.WebhookEventResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &events))
	suite.Require().Len(events, 1)
	suite.Equal("evt_3", events[0].WebhookEventID)
	suite.Equal(1, events[0].RetryCount)
}

func (suite *LedgerAPITestSuite) TestWebhook_RateLimited() {
	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = suite.deliver("noisy", []byte(`{}`), "")
	}
	suite.Equal(http.StatusTooManyRequests, last.Code)

	// Other applications have their own budget.
	w := suite.deliver("quiet", []byte(`{}`), "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *LedgerAPITestSuite) TestWebhookCleanup_InvalidDays() {
	w := suite.request(http.MethodPost, "/api/v1/webhook-events/cleanup?days=0", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/webhook-events/cleanup", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"deleted":0}`, w.Body.String())
}

func TestLedgerAPI(t *testing.T) {
	suite.Run(t, new(LedgerAPITestSuite))
}
