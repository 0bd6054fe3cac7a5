// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"sync"

	"github.com/pkg/errors"

	"code.stratatrade.io/strata/libs/num"
)

// ErrUnknownCurrency signals a lookup for a code not present in the
// registry.
var ErrUnknownCurrency = errors.New("unknown currency code")

// Currency describes a settlement currency.
type Currency struct {
	Code      string       `json:"code" msgpack:"code"`
	Precision uint8        `json:"precision" msgpack:"precision"`
	Kind      CurrencyKind `json:"kind" msgpack:"kind"`
}

// Money builds a monetary amount of this currency from a float.
func (c Currency) Money(value float64) (num.Money, error) {
	return num.NewMoneyFromFloat(value, c.Code, c.Precision)
}

// CurrencyRegistry holds the currencies known to a kernel. The process-wide
// registry is seeded once at init and read-only thereafter; tests that need
// mutation build a hermetic registry of their own.
type CurrencyRegistry struct {
	mu         sync.RWMutex
	currencies map[string]Currency
}

// NewCurrencyRegistry creates an empty registry.
func NewCurrencyRegistry() *CurrencyRegistry {
	return &CurrencyRegistry{currencies: map[string]Currency{}}
}

// Register adds or replaces a currency in the registry.
func (r *CurrencyRegistry) Register(c Currency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currencies[c.Code] = c
}

// Get returns the currency registered under the given code.
func (r *CurrencyRegistry) Get(code string) (Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[code]
	if !ok {
		return Currency{}, errors.Wrap(ErrUnknownCurrency, code)
	}
	return c, nil
}

// Codes returns the registered currency codes.
func (r *CurrencyRegistry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.currencies))
	for code := range r.currencies {
		codes = append(codes, code)
	}
	return codes
}

var defaultRegistry = NewCurrencyRegistry()

func init() {
	seed := []Currency{
		{Code: "USD", Precision: 2, Kind: CurrencyFiat},
		{Code: "EUR", Precision: 2, Kind: CurrencyFiat},
		{Code: "GBP", Precision: 2, Kind: CurrencyFiat},
		{Code: "JPY", Precision: 0, Kind: CurrencyFiat},
		{Code: "CHF", Precision: 2, Kind: CurrencyFiat},
		{Code: "AUD", Precision: 2, Kind: CurrencyFiat},
		{Code: "CAD", Precision: 2, Kind: CurrencyFiat},
		{Code: "NZD", Precision: 2, Kind: CurrencyFiat},
		{Code: "SGD", Precision: 2, Kind: CurrencyFiat},
		{Code: "HKD", Precision: 2, Kind: CurrencyFiat},
		{Code: "CNY", Precision: 2, Kind: CurrencyFiat},
		{Code: "KRW", Precision: 0, Kind: CurrencyFiat},

		{Code: "BTC", Precision: 8, Kind: CurrencyCrypto},
		{Code: "ETH", Precision: 8, Kind: CurrencyCrypto},
		{Code: "SOL", Precision: 8, Kind: CurrencyCrypto},
		{Code: "USDT", Precision: 6, Kind: CurrencyCrypto},
		{Code: "USDC", Precision: 6, Kind: CurrencyCrypto},
		{Code: "DAI", Precision: 8, Kind: CurrencyCrypto},
		{Code: "XRP", Precision: 6, Kind: CurrencyCrypto},
		{Code: "DOGE", Precision: 8, Kind: CurrencyCrypto},

		{Code: "XAU", Precision: 2, Kind: CurrencyCommodity},
		{Code: "XAG", Precision: 2, Kind: CurrencyCommodity},
	}
	for _, c := range seed {
		defaultRegistry.Register(c)
	}
}

// RegisterCurrency adds a currency to the process-wide registry. Intended
// for use during kernel construction, before the hot path starts.
func RegisterCurrency(c Currency) {
	defaultRegistry.Register(c)
}

// CurrencyFromCode returns a currency from the process-wide registry.
func CurrencyFromCode(code string) (Currency, error) {
	return defaultRegistry.Get(code)
}
