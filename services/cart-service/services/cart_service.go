package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	aws_pkg "github.com/yashrajoria/shopping-cart-backend/pkg/aws"
	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/pkg/eventbus"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/config"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/models"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/repository"
	apperrors "github.com/yashrajoria/shopping-cart-backend/services/common/errors"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

// CartService owns cart mutation and checkout initiation. Checkout does not
// clear the cart; that happens only when an acknowledgment arrives from the
// checkout service, so the cart stays recoverable until the order is
// durably recorded downstream.
type CartService struct {
	store   repository.CartStore
	bus     eventbus.Publisher
	cfg     config.Config
	metrics *aws_pkg.MetricsClient
}

func NewCartService(store repository.CartStore, bus eventbus.Publisher, cfg config.Config) *CartService {
	return &CartService{
		store: store,
		bus:   bus,
		cfg:   cfg,
	}
}

// WithMetrics attaches a CloudWatch metrics client. A nil client leaves
// metric emission off.
func (s *CartService) WithMetrics(metrics *aws_pkg.MetricsClient) *CartService {
	s.metrics = metrics
	return s
}

// GetCart returns the cart for userName, or an empty cart when none is
// stored. A missing cart is not an error.
func (s *CartService) GetCart(ctx context.Context, userName string) (models.Cart, error) {
	cart, err := s.store.GetCart(ctx, userName)
	if err != nil {
		return models.Cart{}, apperrors.Storage("get cart", err)
	}
	if cart == nil {
		return models.Cart{UserName: userName, Items: []models.CartItem{}}, nil
	}
	return *cart, nil
}

// ListCarts returns every stored cart.
func (s *CartService) ListCarts(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.store.ListCarts(ctx)
	if err != nil {
		return nil, apperrors.Storage("list carts", err)
	}
	return carts, nil
}

// AddItems validates and stores a cart, replacing any previous one for the
// same user.
func (s *CartService) AddItems(ctx context.Context, cart models.Cart) error {
	if err := models.ValidateCart(cart); err != nil {
		return err
	}
	if err := s.store.SaveCart(ctx, &cart); err != nil {
		return apperrors.Storage("save cart", err)
	}
	return nil
}

// DeleteCart removes the cart for userName. Deleting a missing cart
// succeeds silently.
func (s *CartService) DeleteCart(ctx context.Context, userName string) error {
	if err := s.store.DeleteCart(ctx, userName); err != nil {
		return apperrors.Storage("delete cart", err)
	}
	return nil
}

// InitiateCheckout loads the user's cart, computes the total once, and
// publishes a CheckoutEvent on the event bus. The cart is left in place.
func (s *CartService) InitiateCheckout(ctx context.Context, req models.CheckoutRequest) (contracts.CheckoutEvent, error) {
	var event contracts.CheckoutEvent

	if err := models.ValidateCheckoutRequest(req); err != nil {
		return event, err
	}

	cart, err := s.store.GetCart(ctx, req.UserName)
	if err != nil {
		return event, apperrors.Storage("get cart", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return event, apperrors.EmptyCart(req.UserName)
	}

	event = contracts.CheckoutEvent{
		RequestID:  uuid.NewString(),
		UserName:   req.UserName,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		TotalPrice: cart.TotalPrice(),
		Items: lo.Map(cart.Items, func(it models.CartItem, _ int) contracts.EventItem {
			return contracts.EventItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Quantity:  it.Quantity,
				Image:     it.Image,
			}
		}),
	}

	env, err := eventbus.NewEnvelope(s.cfg.EventSource, s.cfg.EventDetailType, event)
	if err != nil {
		return contracts.CheckoutEvent{}, apperrors.Publish("marshal checkout event", err)
	}
	if err := s.bus.Publish(ctx, env); err != nil {
		return contracts.CheckoutEvent{}, apperrors.Publish("publish checkout event", err)
	}

	logger.Info(ctx, "checkout event published",
		zap.String("user", req.UserName),
		zap.String("request_id", event.RequestID),
		zap.String("total_price", event.TotalPrice.String()),
	)
	s.recordMetric(aws_pkg.MetricCheckoutRequested)
	return event, nil
}

// HandleAcknowledgment consumes a CheckoutAck. A positive ack clears the
// user's cart; anything else is logged and the cart is left intact. Both
// paths are safe under duplicate delivery.
func (s *CartService) HandleAcknowledgment(ctx context.Context, ack contracts.CheckoutAck) error {
	if !ack.EventAck {
		logger.Warn(ctx, "acknowledgment not received, keeping cart",
			zap.String("user", ack.UserName),
		)
		return nil
	}

	if err := s.store.DeleteCart(ctx, ack.UserName); err != nil {
		// surface the failure so the ack queue redelivers
		return apperrors.Storage("delete cart on ack", err)
	}

	logger.Info(ctx, "cart cleared after acknowledgment",
		zap.String("user", ack.UserName),
	)
	s.recordMetric(aws_pkg.MetricCartsCleared)
	return nil
}

func (s *CartService) recordMetric(name string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dims := map[string]string{"Service": "cart-service"}
		_ = s.metrics.RecordCount(ctx, name, dims)
	}()
}
