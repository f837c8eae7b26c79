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

package oracle

import (
	"sync"

	"code.tickmarket.io/optix/types/num"

	"github.com/pkg/errors"
)

// ErrPriceUnavailable is returned when no price can be sourced. Any
// engine operation reading the price fails wholesale on it.
var ErrPriceUnavailable = errors.New("oracle price unavailable")

// PriceSource supplies the current underlying price, scaled to the
// collateral's minor unit. Sourcing, staleness checks and wire formats
// live behind this interface, the engine only consumes the value.
type PriceSource interface {
	CurrentPrice() (*num.Uint, error)
}

// StaticSource is a PriceSource backed by a settable value. Used in
// tests and by the dev runner.
type StaticSource struct {
	mu    sync.Mutex
	price *num.Uint
}

// NewStaticSource creates a static price source. A nil price means
// unavailable until Set is called.
func NewStaticSource(price *num.Uint) *StaticSource {
	s := &StaticSource{}
	if price != nil {
		s.price = price.Clone()
	}
	return s
}

// Set updates the price returned by CurrentPrice.
func (s *StaticSource) Set(price *num.Uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price.Clone()
}

// CurrentPrice implements PriceSource.
func (s *StaticSource) CurrentPrice() (*num.Uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.price == nil {
		return nil, ErrPriceUnavailable
	}
	return s.price.Clone(), nil
}
