// Package pricing keeps a premium template's price consistent with its original price
// and discount percentage.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places prices are rounded to.
const Scale = 2

var (
	// ErrNegativePrice is returned when an original price below zero is supplied.
	ErrNegativePrice = errors.New("pricing: original price must not be negative")
	// ErrDiscountRange is returned when a discount outside [0,100] is supplied.
	ErrDiscountRange = errors.New("pricing: discount percent must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Calculate returns originalPrice - originalPrice*discountPercent/100 rounded half-up to
// two decimals.
func Calculate(originalPrice, discountPercent float64) float64 {
	original := decimal.NewFromFloat(originalPrice)
	discount := decimal.NewFromFloat(discountPercent)
	price := original.Sub(original.Mul(discount).Div(hundred))
	return price.Round(Scale).InexactFloat64()
}

// Round rounds an amount half-up to two decimals.
func Round(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(Scale).InexactFloat64()
}

// Quote holds the three related pricing inputs of a template.
type Quote struct {
	OriginalPrice   float64
	DiscountPercent float64
	Price           float64
}

// NewQuote validates the inputs and computes the derived price.
func NewQuote(originalPrice, discountPercent float64) (Quote, error) {
	if err := validate(originalPrice, discountPercent); err != nil {
		return Quote{}, err
	}
	return Quote{
		OriginalPrice:   originalPrice,
		DiscountPercent: discountPercent,
		Price:           Calculate(originalPrice, discountPercent),
	}, nil
}

// WithOriginalPrice recomputes the price from the current discount.
func (q Quote) WithOriginalPrice(originalPrice float64) (Quote, error) {
	return NewQuote(originalPrice, q.DiscountPercent)
}

// WithDiscountPercent recomputes the price from the current original price. The
// original price is never modified.
func (q Quote) WithDiscountPercent(discountPercent float64) (Quote, error) {
	return NewQuote(q.OriginalPrice, discountPercent)
}

// Savings is the amount taken off the original price.
func (q Quote) Savings() float64 {
	return decimal.NewFromFloat(q.OriginalPrice).Sub(decimal.NewFromFloat(q.Price)).Round(Scale).InexactFloat64()
}

func validate(originalPrice, discountPercent float64) error {
	if originalPrice < 0 {
		return ErrNegativePrice
	}
	if discountPercent < 0 || discountPercent > 100 {
		return ErrDiscountRange
	}
	return nil
}
