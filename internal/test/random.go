package test

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

const loginAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomLogin returns a lowercase login of n characters.
func RandomLogin(n int) string {
	if n <= 0 {
		n = 8
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = loginAlphabet[rand.IntN(len(loginAlphabet))]
	}
	return string(buf)
}

// RandomPassword returns a printable ASCII secret with length in [minLen, maxLen].
func RandomPassword(minLen, maxLen int) string {
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = byte('!' + rand.IntN('~'-'!'+1))
	}
	return string(buf)
}

// RandomAmount returns a positive amount with two decimal places not above maxUnits.
func RandomAmount(maxUnits int64) decimal.Decimal {
	if maxUnits <= 0 {
		maxUnits = 1
	}
	cents := 1 + rand.Int64N(maxUnits*100)
	return decimal.New(cents, -2)
}
