package contracts

import (
	"ambica-diagnostic-service/internal/app/models"
	"context"
)

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountInMinorUnits int64, currency, receipt string) (*models.GatewayOrder, error)
	// VerifySignature checks the provider signature over the order and payment refs.
	VerifySignature(orderRef, paymentRef, signature string) (bool, error)
}
