package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	EtherDecimals = 18
	GweiDecimals  = 9
)

// ParseUnits converts a human amount such as "0.5" into its smallest unit with the given decimals
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount is empty")
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}

	return shifted.BigInt(), nil
}

// ParseEther converts an amount in ether (or BNB) into wei
func ParseEther(amount string) (*big.Int, error) {
	return ParseUnits(amount, EtherDecimals)
}

// ParseGwei converts an amount in gwei into wei
func ParseGwei(amount string) (*big.Int, error) {
	return ParseUnits(amount, GweiDecimals)
}

// FormatUnits renders a smallest-unit amount as a human readable decimal string
func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -decimals).String()
}

// FormatEther renders wei as ether
func FormatEther(value *big.Int) string {
	return FormatUnits(value, EtherDecimals)
}

// FormatGwei renders wei as gwei
func FormatGwei(value *big.Int) string {
	return FormatUnits(value, GweiDecimals)
}
