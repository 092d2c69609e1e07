package gateway

import (
	"context"
	"encoding/json"

	natspkg "github.com/spotroute/backend/internal/pkg/nats"

	"github.com/spotroute/backend/internal/pkg/models"
)

// SubjectPaymentProcessed is the NATS subject for recorded payments
const SubjectPaymentProcessed = "payments.processed"

// PaymentGW publishes payment events to NATS
type PaymentGW struct {
	natsClient *natspkg.Client
}

// NewPaymentGW creates a new payment gateway
func NewPaymentGW(natsClient *natspkg.Client) *PaymentGW {
	return &PaymentGW{
		natsClient: natsClient,
	}
}

// PublishPaymentProcessed publishes a payment processed event
func (g *PaymentGW) PublishPaymentProcessed(ctx context.Context, event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return g.natsClient.Publish(SubjectPaymentProcessed, data)
}
