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

package collateral

import (
	"context"

	"code.tickmarket.io/optix/types/num"
)

// BuiltinCustody is a custody adapter that accepts every transfer. It
// stands in for the real token bridge in tests and the dev runner.
type BuiltinCustody struct{}

// NewBuiltinCustody returns a no-op custodian.
func NewBuiltinCustody() *BuiltinCustody {
	return &BuiltinCustody{}
}

// TransferIn implements Custody.
func (BuiltinCustody) TransferIn(_ context.Context, _ string, _ *num.Uint) error {
	return nil
}

// TransferOut implements Custody.
func (BuiltinCustody) TransferOut(_ context.Context, _ string, _ *num.Uint) error {
	return nil
}

// Allowlist is an IdentityGate over a plain set of enrolled parties.
type Allowlist struct {
	parties map[string]struct{}
	// open admits everyone, used by the dev runner.
	open bool
}

// NewAllowlist returns an empty allowlist.
func NewAllowlist() *Allowlist {
	return &Allowlist{parties: map[string]struct{}{}}
}

// NewOpenGate returns a gate that admits every party.
func NewOpenGate() *Allowlist {
	return &Allowlist{parties: map[string]struct{}{}, open: true}
}

// Enroll admits a party. Signature verification happened upstream.
func (a *Allowlist) Enroll(party string) {
	a.parties[party] = struct{}{}
}

// Enrolled implements IdentityGate.
func (a *Allowlist) Enrolled(party string) bool {
	if a.open {
		return true
	}
	_, ok := a.parties[party]
	return ok
}
