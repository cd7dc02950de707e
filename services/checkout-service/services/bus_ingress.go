package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
	"github.com/yashrajoria/shopping-cart-backend/pkg/eventbus"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

// Subscriber is the read side of a pattern-routed bus; satisfied by
// *eventbus.Bus.
type Subscriber interface {
	Subscribe(p eventbus.Pattern, h eventbus.Handler)
}

// RegisterBusIngress attaches the processor to direct pattern-matched
// dispatch. This is one of the two ingress paths; the SQS consumer is the
// other. Both are thin shims over HandleCheckoutEvent.
func RegisterBusIngress(bus Subscriber, p *Processor) {
	pattern := eventbus.Pattern{
		Source:     contracts.SourceCartCheckout,
		DetailType: contracts.DetailTypeCartCheckout,
	}
	bus.Subscribe(pattern, func(ctx context.Context, env eventbus.Envelope) error {
		var evt contracts.CheckoutEvent
		if err := json.Unmarshal(env.Detail, &evt); err != nil {
			logger.Warn(ctx, "discarding malformed checkout event",
				zap.Error(err), zap.String("source", env.Source))
			return nil
		}
		_, err := p.HandleCheckoutEvent(ctx, evt)
		return err
	})
}
