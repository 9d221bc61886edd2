package services

import (
	"fmt"
	"log"

	pubnub "github.com/pubnub/go/v7"

	"payment-collection/models"
)

// Notifier pushes payment events to the agent's channel so other open tabs
// and the supervisor dashboard see terminal transitions without refreshing.
type Notifier interface {
	PaymentStatusChanged(agentID string, resp *models.PaymentResponse)
}

type PubNubNotifier struct {
	pn *pubnub.PubNub
}

func NewPubNubNotifier(publishKey, subscribeKey, userID string) *PubNubNotifier {
	cfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey

	return &PubNubNotifier{
		pn: pubnub.NewPubNub(cfg),
	}
}

// PaymentStatusChanged publishes the transition to the per-agent channel.
// Publish failures are logged only, the payment flow never depends on them.
func (n *PubNubNotifier) PaymentStatusChanged(agentID string, resp *models.PaymentResponse) {
	channel := fmt.Sprintf("user-%s", agentID)

	_, _, err := n.pn.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":           "payment_status",
			"transaction_id": resp.TransactionID,
			"status":         string(resp.Status),
			"amount":         resp.Amount.String(),
		}).
		Execute()
	if err != nil {
		log.Printf("PaymentStatusChanged: pubnub publish: %v", err)
	}
}
