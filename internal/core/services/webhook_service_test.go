package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/core/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/SscSPs/nonprofit_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type WebhookServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	service portssvc.WebhookSvcFacade
	calls   atomic.Int32
}

func (suite *WebhookServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.service = services.NewWebhookService(suite.store, 2, 5*time.Minute,
		services.WithClock(func() time.Time { return fixedNow }))
	suite.calls.Store(0)
}

func (suite *WebhookServiceTestSuite) delivery(id, eventType string) dto.RecordWebhookEventRequest {
	return dto.RecordWebhookEventRequest{
		WebhookEventID: id,
		ApplicationID:  "app_1",
		EventType:      eventType,
		Payload:        json.RawMessage(`{"donationId":"d_1","amount":"25.00"}`),
	}
}

func (suite *WebhookServiceTestSuite) countingHandler(result string) portssvc.WebhookHandlerFunc {
	return func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		suite.calls.Add(1)
		return json.RawMessage(result), nil
	}
}

func (suite *WebhookServiceTestSuite) TestRecordEvent_Idempotent() {
	first, err := suite.service.RecordEvent(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.True(first.IsNew)
	suite.Equal(domain.WebhookReceived, first.Event.Status)

	second, err := suite.service.RecordEvent(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.False(second.IsNew)
	suite.Equal(first.Event.ID, second.Event.ID)
}

func (suite *WebhookServiceTestSuite) TestRecordEvent_Validation() {
	_, err := suite.service.RecordEvent(suite.ctx, dto.RecordWebhookEventRequest{ApplicationID: "app_1", EventType: "x"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	req := suite.delivery("evt_bad", "x")
	req.Payload = json.RawMessage(`{not json`)
	_, err = suite.service.RecordEvent(suite.ctx, req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = suite.delivery("evt_empty", "x")
	req.Payload = nil
	res, err := suite.service.RecordEvent(suite.ctx, req)
	suite.Require().NoError(err)
	suite.JSONEq(`{}`, string(res.Event.Payload))
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_DuplicateDeliveryAppliesOnce() {
	suite.service.RegisterHandler("payment.succeeded", suite.countingHandler(`{"entryId":"e_1"}`))

	res, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.True(res.IsNew)
	suite.Equal(domain.WebhookProcessed, res.Event.Status)
	suite.JSONEq(`{"entryId":"e_1"}`, string(res.Event.ProcessingResult))

	res, err = suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.False(res.IsNew)
	suite.Equal(domain.WebhookProcessed, res.Event.Status)
	suite.Equal(int32(1), suite.calls.Load())

	processed, err := suite.service.IsProcessed(suite.ctx, "evt_1")
	suite.Require().NoError(err)
	suite.True(processed)
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_ConcurrentDeliveries() {
	suite.service.RegisterHandler("payment.succeeded", suite.countingHandler(`{}`))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_race", "payment.succeeded"))
		}()
	}
	wg.Wait()

	suite.Equal(int32(1), suite.calls.Load())
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_ConcurrentRedeliveriesOfFailedEvent() {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	suite.service.RegisterHandler("payment.succeeded", func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		if suite.calls.Add(1) == 1 {
			return nil, errors.New("donation service unavailable")
		}
		entered <- struct{}{}
		<-release
		return json.RawMessage(`{"ok":true}`), nil
	})

	_, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().Error(err)

	done := make(chan *domain.RecordResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, _ := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
			done <- res
		}()
	}

	<-entered
	select {
	case res := <-done:
		suite.Require().NotNil(res)
		suite.False(res.IsNew)
		suite.Equal(domain.WebhookReceived, res.Event.Status, "the losing delivery sees the claim in progress")
	case <-time.After(2 * time.Second):
		suite.FailNow("second redelivery is blocked inside the handler")
	}
	close(release)
	res := <-done
	suite.Require().NotNil(res)
	suite.Equal(domain.WebhookProcessed, res.Event.Status)

	suite.Equal(int32(2), suite.calls.Load(), "one failed run and one successful retry")
	suite.Empty(entered)
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_ReclaimsAbandonedEvent() {
	suite.service.RegisterHandler("payment.succeeded", suite.countingHandler(`{"entryId":"e_9"}`))
	for id, age := range map[string]time.Duration{"evt_stale": 10 * time.Minute, "evt_live": time.Minute} {
		touched := fixedNow.Add(-age)
		_, _, err := suite.store.InsertEventIfAbsent(suite.ctx, domain.WebhookEvent{
			ID: id, WebhookEventID: id, ApplicationID: "app_1", EventType: "payment.succeeded",
			Payload: json.RawMessage(`{}`), Status: domain.WebhookReceived, CreatedAt: touched, UpdatedAt: touched,
		})
		suite.Require().NoError(err)
	}

	retryable, err := suite.service.ListRetryable(suite.ctx, 0)
	suite.Require().NoError(err)
	suite.Require().Len(retryable, 1)
	suite.Equal("evt_stale", retryable[0].WebhookEventID)

	res, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_live", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.Equal(domain.WebhookReceived, res.Event.Status)
	suite.Equal(int32(0), suite.calls.Load(), "a live claim is left to its holder")

	res, err = suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_stale", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.False(res.IsNew)
	suite.Equal(domain.WebhookProcessed, res.Event.Status)
	suite.JSONEq(`{"entryId":"e_9"}`, string(res.Event.ProcessingResult))
	suite.Equal(int32(1), suite.calls.Load())
}

// cancelAwareStore fails like a database driver would when the context is done.
type cancelAwareStore struct {
	*memory.Store
}

func (s cancelAwareStore) MarkEventFailed(ctx context.Context, webhookEventID string, lease *time.Time, errorMessage string, incrementRetry bool, failedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.MarkEventFailed(ctx, webhookEventID, lease, errorMessage, incrementRetry, failedAt)
}

func (s cancelAwareStore) FindEventByWebhookID(ctx context.Context, webhookEventID string) (*domain.WebhookEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.FindEventByWebhookID(ctx, webhookEventID)
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_RecordsFailureAfterCallerCancels() {
	service := services.NewWebhookService(cancelAwareStore{suite.store}, 2, 5*time.Minute,
		services.WithClock(func() time.Time { return fixedNow }))
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()
	service.RegisterHandler("payment.succeeded", func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		cancel()
		return nil, ctx.Err()
	})

	res, err := service.ProcessOnce(ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().Error(err)
	suite.ErrorIs(err, context.Canceled)
	suite.Equal(domain.WebhookFailed, res.Event.Status)

	retryable, err := suite.service.ListRetryable(suite.ctx, 0)
	suite.Require().NoError(err)
	suite.Len(retryable, 1)
}

func (suite *WebhookServiceTestSuite) TestMarkTransitionsOnlyFromReceived() {
	suite.service.RegisterHandler("payment.succeeded", suite.countingHandler(`{}`))
	_, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)

	err = suite.service.MarkFailed(suite.ctx, "evt_1", "late failure", true)
	suite.ErrorIs(err, apperrors.ErrEventNotClaimed)
	err = suite.service.MarkProcessed(suite.ctx, "evt_1", json.RawMessage(`{"again":true}`))
	suite.ErrorIs(err, apperrors.ErrEventNotClaimed)

	processed, err := suite.service.IsProcessed(suite.ctx, "evt_1")
	suite.Require().NoError(err)
	suite.True(processed)

	err = suite.service.MarkProcessed(suite.ctx, "evt_missing", nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.RecordEvent(suite.ctx, suite.delivery("evt_2", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.NoError(suite.service.MarkProcessed(suite.ctx, "evt_2", json.RawMessage(`{}`)))
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_FailureThenRetry() {
	fail := true
	suite.service.RegisterHandler("payment.succeeded", func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		suite.calls.Add(1)
		if fail {
			return nil, errors.New("donation service unavailable")
		}
		return json.RawMessage(`{"ok":true}`), nil
	})

	res, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().Error(err)
	suite.Contains(err.Error(), "donation service unavailable")
	suite.Equal(domain.WebhookFailed, res.Event.Status)
	suite.Equal(1, res.Event.RetryCount)
	suite.Require().NotNil(res.Event.ErrorMessage)

	retryable, err := suite.service.ListRetryable(suite.ctx, 0)
	suite.Require().NoError(err)
	suite.Len(retryable, 1)

	fail = false
	res, err = suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.Equal(domain.WebhookProcessed, res.Event.Status)
	suite.Nil(res.Event.ErrorMessage)
	suite.Equal(int32(2), suite.calls.Load())

	retryable, err = suite.service.ListRetryable(suite.ctx, 0)
	suite.Require().NoError(err)
	suite.Empty(retryable)
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_RetriesExhausted() {
	suite.service.RegisterHandler("payment.succeeded", func(ctx context.Context, event *domain.WebhookEvent) (json.RawMessage, error) {
		suite.calls.Add(1)
		return nil, errors.New("boom")
	})

	for i := 0; i < 2; i++ {
		_, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
		suite.Require().Error(err)
	}

	res, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "payment.succeeded"))
	suite.Require().NoError(err)
	suite.Equal(domain.WebhookFailed, res.Event.Status)
	suite.Equal(2, res.Event.RetryCount)
	suite.Equal(int32(2), suite.calls.Load(), "exhausted events are not handled again")
}

func (suite *WebhookServiceTestSuite) TestProcessOnce_UnhandledTypeIsIgnored() {
	res, err := suite.service.ProcessOnce(suite.ctx, suite.delivery("evt_1", "customer.updated"))
	suite.Require().NoError(err)
	suite.Equal(domain.WebhookProcessed, res.Event.Status)
	suite.JSONEq(`{"ignored":true}`, string(res.Event.ProcessingResult))
}

func (suite *WebhookServiceTestSuite) TestIsProcessed_UnknownEvent() {
	processed, err := suite.service.IsProcessed(suite.ctx, "evt_never")
	suite.NoError(err)
	suite.False(processed)
}

func (suite *WebhookServiceTestSuite) TestCleanupOlderThan() {
	_, err := suite.service.RecordEvent(suite.ctx, suite.delivery("evt_old", "x"))
	suite.Require().NoError(err)

	later := services.NewWebhookService(suite.store, 2, 5*time.Minute,
		services.WithClock(func() time.Time { return fixedNow.AddDate(0, 0, 31) }))
	_, err = later.RecordEvent(suite.ctx, suite.delivery("evt_new", "x"))
	suite.Require().NoError(err)

	_, err = later.CleanupOlderThan(suite.ctx, 0)
	suite.ErrorIs(err, apperrors.ErrValidation)

	deleted, err := later.CleanupOlderThan(suite.ctx, 30)
	suite.Require().NoError(err)
	suite.Equal(int64(1), deleted)

	_, err = suite.store.FindEventByWebhookID(suite.ctx, "evt_old")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.store.FindEventByWebhookID(suite.ctx, "evt_new")
	suite.NoError(err)
}

func TestWebhookServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}
