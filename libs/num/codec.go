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

package num

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Prices and quantities travel as their exact decimal string on every
// self-describing encoding; the columnar encoding carries the raw integer
// instead.

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewPriceFromString(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalMsgpack implements msgpack.Marshaler.
func (p Price) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(p.String())
}

// UnmarshalMsgpack implements msgpack.Unmarshaler.
func (p *Price) UnmarshalMsgpack(data []byte) error {
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewPriceFromString(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewQuantityFromString(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// MarshalMsgpack implements msgpack.Marshaler.
func (q Quantity) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(q.String())
}

// UnmarshalMsgpack implements msgpack.Unmarshaler.
func (q *Quantity) UnmarshalMsgpack(data []byte) error {
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewQuantityFromString(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

type moneyJSON struct {
	Amount    string `json:"amount" msgpack:"amount"`
	Currency  string `json:"currency" msgpack:"currency"`
	Precision uint8  `json:"precision" msgpack:"precision"`
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:    rawToString(m.raw, m.precision),
		Currency:  m.currency,
		Precision: m.precision,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency, v.Precision)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalMsgpack implements msgpack.Marshaler.
func (m Money) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(moneyJSON{
		Amount:    rawToString(m.raw, m.precision),
		Currency:  m.currency,
		Precision: m.precision,
	})
}

// UnmarshalMsgpack implements msgpack.Unmarshaler.
func (m *Money) UnmarshalMsgpack(data []byte) error {
	var v moneyJSON
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency, v.Precision)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
