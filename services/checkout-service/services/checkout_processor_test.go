package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/models"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/repository"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/services"
	apperrors "github.com/yashrajoria/shopping-cart-backend/services/common/errors"
	"github.com/yashrajoria/shopping-cart-backend/services/common/idempotency"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

func TestMain(m *testing.M) {
	logger.Initialize("test")
	m.Run()
}

const ackTopicARN = "arn:aws:sns:ap-south-1:000000000000:AckTopic"

// ---- mock SNS ----

type mockSNS struct {
	publishedArn string
	published    [][]byte
	err          error
}

func (m *mockSNS) Publish(_ context.Context, topicArn string, message []byte) error {
	if m.err != nil {
		return m.err
	}
	m.publishedArn = topicArn
	m.published = append(m.published, append([]byte(nil), message...))
	return nil
}

func (m *mockSNS) lastAck(t *testing.T) contracts.CheckoutAck {
	t.Helper()
	require.NotEmpty(t, m.published)
	var ack contracts.CheckoutAck
	require.NoError(t, json.Unmarshal(m.published[len(m.published)-1], &ack))
	return ack
}

// ---- failing store ----

type failingOrderStore struct {
	repository.OrderStore
	saveErr error
}

func (f *failingOrderStore) SaveOrder(context.Context, models.Order) error {
	return f.saveErr
}

func newProcessor(t *testing.T) (*services.Processor, *repository.MemoryOrderStore, *mockSNS) {
	t.Helper()
	store := repository.NewMemoryOrderStore()
	sns := &mockSNS{}
	p := services.NewProcessor(store, idempotency.NewMemoryGuard(), sns, ackTopicARN, nil)
	return p, store, sns
}

func checkoutEvent(requestID string) contracts.CheckoutEvent {
	return contracts.CheckoutEvent{
		RequestID: requestID,
		UserName:  "alice",
		Email:     "alice@test.com",
		TotalPrice: decimal.NewFromInt(25),
		Items: []contracts.EventItem{
			{ProductID: "p1", Name: "phone", Price: decimal.NewFromInt(10), Quantity: 2},
			{ProductID: "p2", Name: "case", Price: decimal.NewFromInt(5), Quantity: 1},
		},
	}
}

func TestHandleCheckoutEvent_PersistsCommittedOrderAndAcks(t *testing.T) {
	p, store, sns := newProcessor(t)
	ctx := context.Background()

	order, err := p.HandleCheckoutEvent(ctx, checkoutEvent(uuid.NewString()))
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "alice", order.UserName)
	assert.Equal(t, models.OrderStatusCommitted, order.Status)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(25)))
	assert.Len(t, order.Items, 2)

	// orderDate is assigned server-side, ISO-8601
	_, err = time.Parse(time.RFC3339Nano, order.OrderDate)
	assert.NoError(t, err)

	stored, err := store.GetOrder(ctx, "alice", order.OrderDate)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.TotalPrice.Equal(decimal.NewFromInt(25)))

	assert.Equal(t, ackTopicARN, sns.publishedArn)
	ack := sns.lastAck(t)
	assert.Equal(t, "alice", ack.UserName)
	assert.True(t, ack.EventAck)
	assert.True(t, ack.EventProcessed)
}

func TestHandleCheckoutEvent_DeduplicatesByRequestID(t *testing.T) {
	p, store, sns := newProcessor(t)
	ctx := context.Background()
	evt := checkoutEvent(uuid.NewString())

	first, err := p.HandleCheckoutEvent(ctx, evt)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := p.HandleCheckoutEvent(ctx, evt)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.OrderDate, second.OrderDate)

	// exactly one order row, two acknowledgments
	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, sns.published, 2)
}

func TestHandleCheckoutEvent_NoRequestIDAcceptsMultiplicity(t *testing.T) {
	p, store, _ := newProcessor(t)
	ctx := context.Background()
	evt := checkoutEvent("")

	_, err := p.HandleCheckoutEvent(ctx, evt)
	require.NoError(t, err)
	_, err = p.HandleCheckoutEvent(ctx, evt)
	require.NoError(t, err)

	// without a requestId each delivery is a distinct valid order
	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, models.OrderStatusCommitted, o.Status)
		assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(25)))
	}
}

func TestHandleCheckoutEvent_StorageFailureSkipsAck(t *testing.T) {
	sns := &mockSNS{}
	p := services.NewProcessor(
		&failingOrderStore{saveErr: errors.New("dynamo down")},
		idempotency.NewMemoryGuard(), sns, ackTopicARN, nil,
	)

	_, err := p.HandleCheckoutEvent(context.Background(), checkoutEvent(uuid.NewString()))
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.Empty(t, sns.published)
}

func TestHandleCheckoutEvent_AckPublishFailureSurfaces(t *testing.T) {
	store := repository.NewMemoryOrderStore()
	sns := &mockSNS{err: errors.New("sns down")}
	p := services.NewProcessor(store, idempotency.NewMemoryGuard(), sns, ackTopicARN, nil)

	_, err := p.HandleCheckoutEvent(context.Background(), checkoutEvent(uuid.NewString()))
	assert.ErrorIs(t, err, apperrors.ErrPublish)

	// the order is durable; redelivery will re-acknowledge, not re-persist
	orders, listErr := store.ListOrders(context.Background())
	require.NoError(t, listErr)
	assert.Len(t, orders, 1)
}

func TestHandleCheckoutEvent_RedeliveryAfterAckFailureDoesNotDuplicate(t *testing.T) {
	store := repository.NewMemoryOrderStore()
	sns := &mockSNS{err: errors.New("sns down")}
	guard := idempotency.NewMemoryGuard()
	p := services.NewProcessor(store, guard, sns, ackTopicARN, nil)
	ctx := context.Background()
	evt := checkoutEvent(uuid.NewString())

	_, err := p.HandleCheckoutEvent(ctx, evt)
	require.ErrorIs(t, err, apperrors.ErrPublish)

	// SNS recovers; the channel redelivers
	sns.err = nil
	order, err := p.HandleCheckoutEvent(ctx, evt)
	require.NoError(t, err)
	require.NotNil(t, order)

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, sns.published, 1)
}

func TestHandleCheckoutEvent_DropsEventWithoutUserName(t *testing.T) {
	p, store, sns := newProcessor(t)

	order, err := p.HandleCheckoutEvent(context.Background(), contracts.CheckoutEvent{})
	assert.NoError(t, err)
	assert.Nil(t, order)

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, sns.published)
}

func TestGetOrder_ExactCompositeKey(t *testing.T) {
	p, _, _ := newProcessor(t)
	ctx := context.Background()

	aliceOrder, err := p.HandleCheckoutEvent(ctx, checkoutEvent(uuid.NewString()))
	require.NoError(t, err)

	bobEvt := checkoutEvent(uuid.NewString())
	bobEvt.UserName = "bob"
	bobOrder, err := p.HandleCheckoutEvent(ctx, bobEvt)
	require.NoError(t, err)

	got, err := p.GetOrder(ctx, "alice", aliceOrder.OrderDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, aliceOrder.OrderDate, got.OrderDate)

	// wrong user or wrong date returns empty, never another order
	got, err = p.GetOrder(ctx, "alice", bobOrder.OrderDate)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = p.GetOrder(ctx, "carol", aliceOrder.OrderDate)
	require.NoError(t, err)
	assert.Nil(t, got)
}
