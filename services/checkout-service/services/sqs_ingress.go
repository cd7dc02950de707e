package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	aws_pkg "github.com/yashrajoria/shopping-cart-backend/pkg/aws"
	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/pkg/eventbus"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

// QueuePoller is the queue side of the SQS ingress; satisfied by
// *aws.SQSConsumer.
type QueuePoller interface {
	StartPolling(ctx context.Context, handler aws_pkg.MessageHandler) error
}

// SQSCheckoutConsumer is the buffered ingress path: the event bus routes
// matching envelopes into an SQS queue, and this consumer drains it. A
// handler error leaves the message in flight, so the visibility timeout
// redelivers it; HandleCheckoutEvent tolerates that.
type SQSCheckoutConsumer struct {
	poller    QueuePoller
	processor *Processor
}

func NewSQSCheckoutConsumer(poller QueuePoller, processor *Processor) *SQSCheckoutConsumer {
	return &SQSCheckoutConsumer{poller: poller, processor: processor}
}

// Start begins polling the checkout queue. Blocks until ctx is cancelled.
func (c *SQSCheckoutConsumer) Start(ctx context.Context) {
	logger.Info(ctx, "starting checkout queue consumer")

	err := c.poller.StartPolling(ctx, c.HandleMessage)
	if err != nil && err != context.Canceled {
		logger.Error(ctx, "checkout queue polling stopped", err)
	}
}

// HandleMessage parses one raw queue message into a CheckoutEvent. The bus
// delivers full envelopes with the payload under "detail"; raw queued
// deliveries carry the bare event. SNS-relayed bodies are unwrapped first.
func (c *SQSCheckoutConsumer) HandleMessage(ctx context.Context, body string) error {
	var snsEnvelope struct {
		Message string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &snsEnvelope); err == nil && snsEnvelope.Message != "" {
		body = snsEnvelope.Message
	}

	var evt contracts.CheckoutEvent

	var env eventbus.Envelope
	if err := json.Unmarshal([]byte(body), &env); err == nil && len(env.Detail) > 0 {
		body = string(env.Detail)
	}

	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		logger.Warn(ctx, "discarding malformed checkout message",
			zap.Error(err), zap.String("payload", body))
		return nil // will never parse; don't hold it for redelivery
	}

	_, err := c.processor.HandleCheckoutEvent(ctx, evt)
	return err
}
