// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jeju-network/jeju-staking/slashdb"
)

// Identity proves that a caller controls a registered validator identity
// and is not banned from participating.
type Identity interface {
	// Verify returns an error if owner does not control validatorID,
	// or if the identity is banned.
	Verify(owner common.Address, validatorID uint64) error
}

// Reputation produces trust-score summaries on a 0..MaxReputation scale.
// The service may be degraded or absent; callers substitute
// NeutralReputation when a lookup fails or returns zero.
type Reputation interface {
	Score(addr common.Address) (uint32, error)
}

// FeeConfig optionally overrides the validator revenue-share ratio.
type FeeConfig interface {
	RevenueShareBps() (uint32, error)
}

// PaymentRail moves value in and out of the engine. Debit pulls collateral
// or revenue in from an external balance, Credit pays collateral returns,
// treasury shares and reward claims out. Either call may fail for reasons
// outside the engine's control; the triggering operation then rolls back
// as a unit.
type PaymentRail interface {
	Debit(from common.Address, amount *big.Int) error
	Credit(to common.Address, amount *big.Int) error
}

// EventStore persists the append-only slashing log. Remove exists solely to
// compensate an append when the rail transfer of the same slash fails; a
// committed slash is never removed.
type EventStore interface {
	Append(ev *slashdb.Event) (int64, error)
	Remove(seq int64) error
}
