package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/riverbend-alliance/portal-backend/internal/dues"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

type duesService interface {
	OnCheckoutCompleted(ctx context.Context, event dues.CompletedEvent) error
	OnCheckoutExpired(ctx context.Context, sessionID string) error
}

// Service dispatches verified Stripe checkout events into the dues state
// machine. Events it does not care about are acknowledged and dropped.
type Service struct {
	dues duesService
}

// ServiceParams bundles the webhook service dependencies.
type ServiceParams struct {
	Dues duesService
}

// NewService validates dependencies and returns the webhook dispatcher.
func NewService(params ServiceParams) (*Service, error) {
	if params.Dues == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dues service required")
	}
	return &Service{dues: params.Dues}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		return s.dues.OnCheckoutCompleted(ctx, dues.CompletedEvent{
			SessionID:  session.ID,
			PaymentRef: paymentRef(session),
			Metadata:   session.Metadata,
		})
	case stripe.EventTypeCheckoutSessionExpired:
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		return s.dues.OnCheckoutExpired(ctx, session.ID)
	default:
		return nil
	}
}

func decodeSession(event *stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	return &session, nil
}

func paymentRef(session *stripe.CheckoutSession) string {
	if session.PaymentIntent != nil {
		return session.PaymentIntent.ID
	}
	return ""
}
