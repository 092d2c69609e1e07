package payments

import (
	"context"

	"github.com/spotroute/backend/internal/pkg/models"
)

// PaymentGW publishes payment events after the owning transaction commits.
// Publish failures are logged by callers, never propagated.
type PaymentGW interface {
	PublishPaymentProcessed(ctx context.Context, event models.PaymentEvent) error
}
