package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	aws_pkg "github.com/yashrajoria/shopping-cart-backend/pkg/aws"
	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/models"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/repository"
	apperrors "github.com/yashrajoria/shopping-cart-backend/services/common/errors"
	"github.com/yashrajoria/shopping-cart-backend/services/common/idempotency"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

// Processor turns checkout events into durable orders and acknowledges
// them. Both ingress paths (direct bus dispatch and the buffered SQS queue)
// call HandleCheckoutEvent, which is idempotent with respect to
// redelivery: a requestId that already produced an order is not persisted
// again, only re-acknowledged.
type Processor struct {
	store       repository.OrderStore
	guard       idempotency.Guard
	acks        aws_pkg.SNSPublisher
	ackTopicARN string
	metrics     *aws_pkg.MetricsClient
	now         func() time.Time
}

func NewProcessor(store repository.OrderStore, guard idempotency.Guard, acks aws_pkg.SNSPublisher, ackTopicARN string, metrics *aws_pkg.MetricsClient) *Processor {
	return &Processor{
		store:       store,
		guard:       guard,
		acks:        acks,
		ackTopicARN: ackTopicARN,
		metrics:     metrics,
		now:         time.Now,
	}
}

// HandleCheckoutEvent processes one delivery of a CheckoutEvent. It assigns
// the orderDate, persists the order as committed, then publishes the
// acknowledgment. A storage or publish failure is returned so the invoking
// channel redelivers; on redelivery the idempotency guard prevents a second
// order row. Events without a requestId skip deduplication and may
// legitimately produce one order per delivery.
func (p *Processor) HandleCheckoutEvent(ctx context.Context, evt contracts.CheckoutEvent) (*models.Order, error) {
	if evt.UserName == "" {
		logger.Warn(ctx, "discarding checkout event without userName")
		return nil, nil
	}

	if evt.RequestID != "" {
		seenDate, err := p.guard.Seen(ctx, evt.RequestID)
		if err != nil {
			// a broken guard must not block checkout; worst case is a
			// duplicate order, the documented at-least-once risk
			logger.Warn(ctx, "idempotency guard unavailable, proceeding without dedupe",
				zap.Error(err), zap.String("request_id", evt.RequestID))
		} else if seenDate != "" {
			logger.Info(ctx, "duplicate checkout delivery, re-acknowledging",
				zap.String("user", evt.UserName),
				zap.String("request_id", evt.RequestID),
				zap.String("order_date", seenDate),
			)
			p.recordMetric(aws_pkg.MetricOrdersDuplicate)
			if err := p.publishAck(ctx, evt.UserName); err != nil {
				return nil, err
			}
			existing, err := p.store.GetOrder(ctx, evt.UserName, seenDate)
			if err != nil {
				logger.Warn(ctx, "could not load deduplicated order", zap.Error(err))
				return nil, nil
			}
			return existing, nil
		}
	}

	order := models.Order{
		UserName:   evt.UserName,
		OrderDate:  p.now().UTC().Format(time.RFC3339Nano),
		RequestID:  evt.RequestID,
		FirstName:  evt.FirstName,
		LastName:   evt.LastName,
		Email:      evt.Email,
		TotalPrice: evt.TotalPrice,
		Status:     models.OrderStatusCommitted,
		Items: lo.Map(evt.Items, func(it contracts.EventItem, _ int) models.OrderItem {
			return models.OrderItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Quantity:  it.Quantity,
				Image:     it.Image,
			}
		}),
	}

	if err := p.store.SaveOrder(ctx, order); err != nil {
		// no acknowledgment on persistence failure; the channel retries
		return nil, apperrors.Storage("save order", err)
	}

	if evt.RequestID != "" {
		if err := p.guard.Record(ctx, evt.RequestID, order.OrderDate); err != nil {
			// order is durable; a lost guard entry only re-opens the
			// duplicate window for this one request
			logger.Warn(ctx, "failed to record idempotency key",
				zap.Error(err), zap.String("request_id", evt.RequestID))
		}
	}

	logger.Info(ctx, "order committed",
		zap.String("user", order.UserName),
		zap.String("order_date", order.OrderDate),
		zap.String("total_price", order.TotalPrice.String()),
		zap.Int("items", len(order.Items)),
	)
	p.recordMetric(aws_pkg.MetricOrdersCreated)

	if err := p.publishAck(ctx, evt.UserName); err != nil {
		return nil, err
	}
	return &order, nil
}

func (p *Processor) publishAck(ctx context.Context, userName string) error {
	ack := contracts.CheckoutAck{
		UserName:       userName,
		EventAck:       true,
		EventProcessed: true,
	}
	payload, err := json.Marshal(ack)
	if err != nil {
		return apperrors.Publish("marshal acknowledgment", err)
	}
	if err := p.acks.Publish(ctx, p.ackTopicARN, payload); err != nil {
		return apperrors.Publish("publish acknowledgment", err)
	}
	return nil
}

// GetOrder returns the order with the exact composite key, or nil when
// absent.
func (p *Processor) GetOrder(ctx context.Context, userName, orderDate string) (*models.Order, error) {
	order, err := p.store.GetOrder(ctx, userName, orderDate)
	if err != nil {
		return nil, apperrors.Storage("get order", err)
	}
	return order, nil
}

// ListOrders returns every stored order.
func (p *Processor) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := p.store.ListOrders(ctx)
	if err != nil {
		return nil, apperrors.Storage("list orders", err)
	}
	return orders, nil
}

func (p *Processor) recordMetric(name string) {
	if p.metrics == nil || !p.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dims := map[string]string{"Service": "checkout-service"}
		_ = p.metrics.RecordCount(ctx, name, dims)
	}()
}
