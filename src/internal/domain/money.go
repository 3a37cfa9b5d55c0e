package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (agorot).
type Money int64

const (
	minorUnitExponent = 2

	// Bounds on the decimal form of an amount. Any int64 of minor units has
	// at most 17 integer digits in major units.
	maxAmountIntegerDigits  = 17
	maxAmountFractionDigits = 20
)

var minorUnitsPerMajor = decimal.New(1, minorUnitExponent)

// MoneyFromMajor converts whole major units to Money.
func MoneyFromMajor(units int64) Money {
	return Money(units * 100)
}

// MoneyFromDecimal converts a major-unit decimal to Money. Amounts with more
// precision than one minor unit are rejected rather than rounded.
func MoneyFromDecimal(amount decimal.Decimal) (Money, error) {
	if err := CheckAmountScale(amount); err != nil {
		return 0, err
	}

	minor := amount.Mul(minorUnitsPerMajor)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount.String(), minorUnitExponent)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
	}
	return Money(minor.IntPart()), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExponent)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExponent)
}

// CheckAmountScale rejects decimals whose exponent or digit count cannot fit
// Money. It only inspects the exponent and coefficient, never rescales, so it
// is cheap for any input.
func CheckAmountScale(amount decimal.Decimal) error {
	exp := int64(amount.Exponent())
	if exp < -maxAmountFractionDigits {
		return fmt.Errorf("amount has more than %d decimal places", minorUnitExponent)
	}
	if exp > maxAmountIntegerDigits || int64(amount.NumDigits())+exp > maxAmountIntegerDigits {
		return ErrAmountOutOfRange
	}
	return nil
}
