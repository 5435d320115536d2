package dues

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgstripe "github.com/riverbend-alliance/portal-backend/pkg/stripe"
)

// Metadata keys carried on the gateway checkout session so the webhook can
// map the callback onto a (member, cycle) pair.
const (
	MetadataMemberID = "member_id"
	MetadataCycleID  = "cycle_id"
)

// CheckoutSessionInput carries everything the gateway needs to host payment.
type CheckoutSessionInput struct {
	MemberID    uuid.UUID
	CycleID     uuid.UUID
	MemberEmail string
	CycleLabel  string
	AmountCents int64
	Currency    enums.Currency
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the gateway's handle on a hosted payment page.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutGateway creates hosted checkout sessions. Wrapped so the
// reconciliation service can be tested without the live API.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error)
}

type stripeGateway struct{}

// NewStripeGateway wraps the configured Stripe client as a CheckoutGateway.
func NewStripeGateway(api *pkgstripe.Client) CheckoutGateway {
	if api == nil {
		return nil
	}
	return &stripeGateway{}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(input.SuccessURL),
		CancelURL:     stripe.String(input.CancelURL),
		CustomerEmail: stripe.String(input.MemberEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(input.Currency)),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Membership dues: " + input.CycleLabel),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataMemberID, input.MemberID.String())
	params.AddMetadata(MetadataCycleID, input.CycleID.String())

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
