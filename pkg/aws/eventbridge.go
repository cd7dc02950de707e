package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/yashrajoria/shopping-cart-backend/pkg/eventbus"
)

// EventBridgePublisher publishes envelopes to a named EventBridge bus.
// Routing rules on the bus match the (source, detail-type) pair and fan the
// event out to its subscriber queues, so this type satisfies
// eventbus.Publisher for the checkout event channel.
type EventBridgePublisher struct {
	client  *eventbridge.Client
	busName string
}

func NewEventBridgePublisher(cfg sdkaws.Config, busName string) *EventBridgePublisher {
	return &EventBridgePublisher{
		client:  eventbridge.NewFromConfig(cfg),
		busName: busName,
	}
}

// Publish sends a single envelope with PutEvents.
func (p *EventBridgePublisher) Publish(ctx context.Context, env eventbus.Envelope) error {
	detail := string(env.Detail)
	entry := types.PutEventsRequestEntry{
		EventBusName: &p.busName,
		Source:       &env.Source,
		DetailType:   &env.DetailType,
		Detail:       &detail,
		Time:         &env.Time,
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("eventbridge put events failed for bus %s: %w", p.busName, err)
	}
	if out.FailedEntryCount > 0 {
		for _, e := range out.Entries {
			if e.ErrorCode != nil {
				return fmt.Errorf("eventbridge entry rejected: %s: %s",
					sdkaws.ToString(e.ErrorCode), sdkaws.ToString(e.ErrorMessage))
			}
		}
		return fmt.Errorf("eventbridge rejected %d entries", out.FailedEntryCount)
	}
	return nil
}
