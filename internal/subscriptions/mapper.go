package subscriptions

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

// Price is one purchasable recurring price of a product.
type Price struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Interval string          `json:"interval,omitempty"`
}

// Product groups the active prices sold under one Stripe product.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Prices      []Price `json:"prices"`
}

// Subscription is the caller-facing view of a user's subscription.
type Subscription struct {
	ID                string                   `json:"id"`
	Status            enums.SubscriptionStatus `json:"status"`
	CancelAtPeriodEnd bool                     `json:"cancelAtPeriodEnd"`
	ClientSecret      string                   `json:"clientSecret,omitempty"`
}

var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true,
	"mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true,
	"xof": true, "xpf": true,
}

// ProductsFromPrices groups expanded prices by product, skipping inactive products.
func ProductsFromPrices(prices []*stripe.Price) []Product {
	byID := map[string]*Product{}
	order := []string{}
	for _, price := range prices {
		if price == nil || price.Product == nil || price.Product.ID == "" {
			continue
		}
		if price.Product.Deleted || !price.Product.Active {
			continue
		}
		product, ok := byID[price.Product.ID]
		if !ok {
			product = &Product{
				ID:          price.Product.ID,
				Name:        price.Product.Name,
				Description: price.Product.Description,
			}
			byID[price.Product.ID] = product
			order = append(order, price.Product.ID)
		}
		product.Prices = append(product.Prices, priceFromStripe(price))
	}

	out := make([]Product, 0, len(order))
	for _, id := range order {
		product := byID[id]
		sort.SliceStable(product.Prices, func(i, j int) bool {
			return product.Prices[i].Amount.LessThan(product.Prices[j].Amount)
		})
		out = append(out, *product)
	}
	return out
}

func priceFromStripe(price *stripe.Price) Price {
	currency := strings.ToLower(string(price.Currency))
	amount := decimal.NewFromInt(price.UnitAmount)
	if !zeroDecimalCurrencies[currency] {
		amount = decimal.New(price.UnitAmount, -2)
	}
	out := Price{
		ID:       price.ID,
		Amount:   amount,
		Currency: strings.ToUpper(currency),
	}
	if price.Recurring != nil {
		out.Interval = string(price.Recurring.Interval)
	}
	return out
}

// MapStatus converts Stripe's status into the stored enum.
func MapStatus(status stripe.SubscriptionStatus) (enums.SubscriptionStatus, error) {
	parsed, err := enums.ParseSubscriptionStatus(string(status))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodePayment, err, "unknown stripe subscription status")
	}
	return parsed, nil
}

// IsActiveStatus reports whether the status grants access to paid features.
func IsActiveStatus(status enums.SubscriptionStatus) bool {
	switch status {
	case enums.SubscriptionStatusActive, enums.SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}

func fromStripe(sub *stripe.Subscription) (*Subscription, error) {
	status, err := MapStatus(sub.Status)
	if err != nil {
		return nil, err
	}
	out := &Subscription{
		ID:                sub.ID,
		Status:            status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.ConfirmationSecret != nil {
		out.ClientSecret = sub.LatestInvoice.ConfirmationSecret.ClientSecret
	}
	return out, nil
}
