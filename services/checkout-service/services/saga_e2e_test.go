package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/pkg/eventbus"
	cartconfig "github.com/yashrajoria/shopping-cart-backend/services/cart-service/config"
	cartmodels "github.com/yashrajoria/shopping-cart-backend/services/cart-service/models"
	cartrepo "github.com/yashrajoria/shopping-cart-backend/services/cart-service/repository"
	cartservices "github.com/yashrajoria/shopping-cart-backend/services/cart-service/services"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/repository"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/services"
	"github.com/yashrajoria/shopping-cart-backend/services/common/idempotency"
)

// loopbackSNS plays the acknowledgment topic: every published ack is fed
// straight into the cart service's ack consumer, the way the SNS
// subscription queue would.
type loopbackSNS struct {
	mu       sync.Mutex
	consumer *cartservices.AckConsumer
}

func (l *loopbackSNS) Publish(ctx context.Context, _ string, message []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumer.HandleMessage(ctx, string(message))
}

type sagaFixture struct {
	bus        *eventbus.Bus
	cartStore  *cartrepo.MemoryCartStore
	orderStore *repository.MemoryOrderStore
	cartSvc    *cartservices.CartService
}

func newSaga(t *testing.T) *sagaFixture {
	t.Helper()

	bus := eventbus.NewBus()
	t.Cleanup(bus.Close)

	cartStore := cartrepo.NewMemoryCartStore()
	orderStore := repository.NewMemoryOrderStore()

	cartSvc := cartservices.NewCartService(cartStore, bus, cartconfig.Load())
	sns := &loopbackSNS{consumer: cartservices.NewAckConsumer(nil, cartSvc)}

	processor := services.NewProcessor(orderStore, idempotency.NewMemoryGuard(), sns, ackTopicARN, nil)
	services.RegisterBusIngress(bus, processor)

	return &sagaFixture{
		bus:        bus,
		cartStore:  cartStore,
		orderStore: orderStore,
		cartSvc:    cartSvc,
	}
}

func TestSaga_CheckoutEndToEnd(t *testing.T) {
	f := newSaga(t)
	ctx := context.Background()

	require.NoError(t, f.cartSvc.AddItems(ctx, cartmodels.Cart{
		UserName: "alice",
		Items: []cartmodels.CartItem{
			{ProductID: "p1", Name: "phone", Price: decimal.NewFromFloat(10.0), Quantity: 2},
			{ProductID: "p2", Name: "case", Price: decimal.NewFromFloat(5.0), Quantity: 1},
		},
	}))

	event, err := f.cartSvc.InitiateCheckout(ctx, cartmodels.CheckoutRequest{UserName: "alice"})
	require.NoError(t, err)
	assert.True(t, event.TotalPrice.Equal(decimal.NewFromInt(25)))

	f.bus.Drain()

	// the order is durably recorded with the published total
	orders, err := f.orderStore.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "alice", orders[0].UserName)
	assert.True(t, orders[0].TotalPrice.Equal(decimal.NewFromInt(25)))

	// the acknowledgment cleared the cart
	cart, err := f.cartSvc.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestSaga_RedeliveredCheckoutEventIsDeduplicated(t *testing.T) {
	f := newSaga(t)
	ctx := context.Background()

	// tap the bus to capture the published envelope for redelivery
	var mu sync.Mutex
	var captured []eventbus.Envelope
	f.bus.Subscribe(eventbus.Pattern{Source: contracts.SourceCartCheckout}, func(_ context.Context, env eventbus.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		captured = append(captured, env)
		return nil
	})

	require.NoError(t, f.cartSvc.AddItems(ctx, cartmodels.Cart{
		UserName: "alice",
		Items: []cartmodels.CartItem{
			{ProductID: "p1", Name: "phone", Price: decimal.NewFromInt(10), Quantity: 1},
		},
	}))
	_, err := f.cartSvc.InitiateCheckout(ctx, cartmodels.CheckoutRequest{UserName: "alice"})
	require.NoError(t, err)
	f.bus.Drain()

	mu.Lock()
	require.Len(t, captured, 1)
	env := captured[0]
	mu.Unlock()

	// a visibility-timeout expiry redelivers the very same envelope
	require.NoError(t, f.bus.Redeliver(env))
	f.bus.Drain()

	// dedupe policy: exactly one order despite two deliveries
	orders, err := f.orderStore.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	var evt contracts.CheckoutEvent
	require.NoError(t, json.Unmarshal(env.Detail, &evt))
	assert.Equal(t, evt.RequestID, orders[0].RequestID)
}
