package common

import (
	"math/big"
)

// PriceScale is the fixed point unit of share prices.
var PriceScale = big.NewInt(1e18)

// MulDiv returns floor(a * b / c), c must not be zero.
func MulDiv(a, b, c *big.Int) *big.Int {
	return new(big.Int).Quo(new(big.Int).Mul(a, b), c)
}

func MinBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}

func CloneBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
