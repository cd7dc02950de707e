package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	aws_pkg "github.com/yashrajoria/shopping-cart-backend/pkg/aws"
	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

// AckPoller is the queue side of an AckConsumer; satisfied by
// *aws.SQSConsumer.
type AckPoller interface {
	StartPolling(ctx context.Context, handler aws_pkg.MessageHandler) error
}

// AckConsumer polls the SQS queue subscribed to the acknowledgment topic
// and feeds each CheckoutAck into the cart service. The underlying channel
// is at-least-once, which is fine: clearing an already-cleared cart is a
// no-op.
type AckConsumer struct {
	poller AckPoller
	svc    *CartService
}

func NewAckConsumer(poller AckPoller, svc *CartService) *AckConsumer {
	return &AckConsumer{poller: poller, svc: svc}
}

// Start begins polling the ack queue. Blocks until ctx is cancelled.
func (c *AckConsumer) Start(ctx context.Context) {
	logger.Info(ctx, "starting acknowledgment consumer")

	err := c.poller.StartPolling(ctx, c.HandleMessage)
	if err != nil && err != context.Canceled {
		logger.Error(ctx, "ack polling stopped", err)
	}
}

// HandleMessage parses one raw queue message into a CheckoutAck. SNS
// wraps its deliveries in an envelope with the payload under "Message".
func (c *AckConsumer) HandleMessage(ctx context.Context, body string) error {
	var snsEnvelope struct {
		Message string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &snsEnvelope); err == nil && snsEnvelope.Message != "" {
		body = snsEnvelope.Message
	}

	var ack contracts.CheckoutAck
	if err := json.Unmarshal([]byte(body), &ack); err != nil {
		logger.Warn(ctx, "discarding malformed acknowledgment",
			zap.Error(err), zap.String("payload", body),
		)
		return nil // malformed payloads will never parse; don't retry
	}
	if ack.UserName == "" {
		logger.Warn(ctx, "discarding acknowledgment without userName")
		return nil
	}

	return c.svc.HandleAcknowledgment(ctx, ack)
}
