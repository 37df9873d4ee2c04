// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Status = uint8

const (
	StatusUnknown = Status(iota) // 0 -> default value
	StatusActive                 // posted collateral, member of the active set
	StatusExited                 // left the active set, record kept for history
	StatusSlashed                // permanently removed for a severe offense
)

// Reason identifies the offense behind a slash.
type Reason = uint8

const (
	ReasonDoubleSigning = Reason(iota)
	ReasonCensorship
	ReasonDowntime
	ReasonGovernanceBan
)

// ReasonName returns a human readable name for a slashing reason.
func ReasonName(r Reason) string {
	switch r {
	case ReasonDoubleSigning:
		return "double-signing"
	case ReasonCensorship:
		return "censorship"
	case ReasonDowntime:
		return "downtime"
	case ReasonGovernanceBan:
		return "governance-ban"
	default:
		return "unknown"
	}
}

// Validator is the per-validator ledger record. Records are never deleted,
// deactivation flips Status and keeps the history queryable.
type Validator struct {
	Address     common.Address // the address controlling the collateral
	ValidatorID uint64         // reference to the external registration record

	Stake           *big.Int  // current collateral
	ReputationScore uint32    // cached score, 0..MaxReputation
	RegisteredAt    time.Time // time of the last (re)registration

	LastBlockProposed uint64 // highest block number reported for this validator
	BlocksProduced    uint64 // cumulative blocks produced across all epochs
	BlocksMissed      uint64 // downtime accumulator, reset when a downtime slash fires

	TotalEarned    *big.Int // cumulative revenue credited over all settlements
	PendingRewards *big.Int // claimable balance, zeroed by ClaimRewards

	Status       Status
	SlashedWith  Reason    // valid only when Status == StatusSlashed
	StatusChange time.Time // time of the last status transition
}

// IsActive reports whether the validator is a member of the active set.
func (v *Validator) IsActive() bool {
	return v.Status == StatusActive
}

// IsSlashed reports whether the validator was permanently removed.
func (v *Validator) IsSlashed() bool {
	return v.Status == StatusSlashed
}

func (v *Validator) clone() *Validator {
	cpy := *v
	cpy.Stake = new(big.Int).Set(v.Stake)
	cpy.TotalEarned = new(big.Int).Set(v.TotalEarned)
	cpy.PendingRewards = new(big.Int).Set(v.PendingRewards)
	return &cpy
}

// Epoch is the settlement record of one accounting window. TotalBlocks and
// TotalRevenue are frozen at rollover; the share fields and SettledAt are
// written exactly once by FinalizeEpoch.
type Epoch struct {
	Number         uint64
	TotalBlocks    uint64
	TotalRevenue   *big.Int
	ValidatorShare *big.Int
	TreasuryShare  *big.Int
	SettledAt      time.Time
	Distributed    bool
}

func (e *Epoch) clone() *Epoch {
	cpy := *e
	cpy.TotalRevenue = new(big.Int).Set(e.TotalRevenue)
	if e.ValidatorShare != nil {
		cpy.ValidatorShare = new(big.Int).Set(e.ValidatorShare)
	}
	if e.TreasuryShare != nil {
		cpy.TreasuryShare = new(big.Int).Set(e.TreasuryShare)
	}
	return &cpy
}

// blockKey keys the duplicate-signature map.
type blockKey struct {
	number uint64
	signer common.Address
}
