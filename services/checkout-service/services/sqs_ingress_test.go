package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/pkg/eventbus"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/services"
)

func TestSQSIngress_BusEnvelopeBody(t *testing.T) {
	p, store, _ := newProcessor(t)
	consumer := services.NewSQSCheckoutConsumer(nil, p)

	env, err := eventbus.NewEnvelope(
		contracts.SourceCartCheckout,
		contracts.DetailTypeCartCheckout,
		checkoutEvent(uuid.NewString()),
	)
	require.NoError(t, err)
	body, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, consumer.HandleMessage(context.Background(), string(body)))

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSQSIngress_RawEventBody(t *testing.T) {
	p, store, _ := newProcessor(t)
	consumer := services.NewSQSCheckoutConsumer(nil, p)

	body, err := json.Marshal(checkoutEvent(uuid.NewString()))
	require.NoError(t, err)

	require.NoError(t, consumer.HandleMessage(context.Background(), string(body)))

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSQSIngress_SNSWrappedEnvelope(t *testing.T) {
	p, store, _ := newProcessor(t)
	consumer := services.NewSQSCheckoutConsumer(nil, p)

	env, err := eventbus.NewEnvelope(
		contracts.SourceCartCheckout,
		contracts.DetailTypeCartCheckout,
		checkoutEvent(uuid.NewString()),
	)
	require.NoError(t, err)
	inner, err := json.Marshal(env)
	require.NoError(t, err)
	wrapped, err := json.Marshal(map[string]string{
		"Type":    "Notification",
		"Message": string(inner),
	})
	require.NoError(t, err)

	require.NoError(t, consumer.HandleMessage(context.Background(), string(wrapped)))

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSQSIngress_MalformedBodyDropped(t *testing.T) {
	p, store, _ := newProcessor(t)
	consumer := services.NewSQSCheckoutConsumer(nil, p)

	assert.NoError(t, consumer.HandleMessage(context.Background(), "not json"))

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSQSIngress_BothPathsConvergeOnSameHandling(t *testing.T) {
	// the same logical event once via the bus envelope and once raw must
	// behave like any other duplicate: one order, two acks
	p, store, sns := newProcessor(t)
	consumer := services.NewSQSCheckoutConsumer(nil, p)
	evt := checkoutEvent(uuid.NewString())

	env, err := eventbus.NewEnvelope(
		contracts.SourceCartCheckout,
		contracts.DetailTypeCartCheckout,
		evt,
	)
	require.NoError(t, err)
	envBody, err := json.Marshal(env)
	require.NoError(t, err)
	rawBody, err := json.Marshal(evt)
	require.NoError(t, err)

	require.NoError(t, consumer.HandleMessage(context.Background(), string(envBody)))
	require.NoError(t, consumer.HandleMessage(context.Background(), string(rawBody)))

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, sns.published, 2)
}
