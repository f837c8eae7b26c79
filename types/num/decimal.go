// Copyright (C) 2023 Tickmarket Labs Limited
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
	"github.com/shopspring/decimal"
)

// Decimal is an arbitrary precision decimal number, used where ratios
// rather than integer amounts are needed (basis point factors, loss
// ratios in reports).
type Decimal = decimal.Decimal

// DecimalZero returns a decimal set to zero.
func DecimalZero() Decimal {
	return decimal.Zero
}

// DecimalOne returns a decimal set to one.
func DecimalOne() Decimal {
	return decimal.NewFromInt(1)
}

// NewDecimalFromFloat returns a new decimal from a float64.
func NewDecimalFromFloat(f float64) Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalFromInt64 returns a new decimal from an int64.
func DecimalFromInt64(i int64) Decimal {
	return decimal.NewFromInt(i)
}

// DecimalFromUint returns a new decimal from a Uint.
func DecimalFromUint(u *Uint) Decimal {
	return decimal.NewFromBigInt(u.BigInt(), 0)
}

// DecimalFromString returns a new decimal parsed from the given string.
func DecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimalFromString returns a new decimal parsed from the given
// string, panicking if it does not parse. For use with constants.
func MustDecimalFromString(s string) Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
