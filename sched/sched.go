// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sched derives a deterministic leader order from selection
// weights. Every node feeding it the same leader set and seed computes the
// same sequence, so it can arbitrate block-production turns without
// further coordination.
package sched

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/big"
	"math/rand"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/jeju-network/jeju-staking/staker"
)

type entry struct {
	address common.Address
	weight  float64
	hash    common.Hash
	score   float64
}

// Scheduler holds one round's leader sequence.
type Scheduler struct {
	round    uint64
	sequence []entry
}

// New computes the leader sequence for a round. Leaders with zero weight
// are never scheduled.
func New(leaders []staker.Leader, round uint64, seed []byte) (*Scheduler, error) {
	if len(leaders) == 0 {
		return nil, errors.New("empty leader set")
	}

	var num [8]byte
	binary.BigEndian.PutUint64(num[:], round)

	// Step 1: shuffle the leader set with the seed so that equal weights
	// do not yield a stable order across rounds.
	shuffled := make([]entry, 0, len(leaders))
	for _, l := range leaders {
		if l.Weight == nil || l.Weight.Sign() == 0 {
			continue
		}
		weight, _ := new(big.Float).SetInt(l.Weight).Float64()
		shuffled = append(shuffled, entry{
			address: l.Address,
			weight:  weight,
			hash:    crypto.Keccak256Hash(seed, num[:], l.Address.Bytes()),
		})
	}
	if len(shuffled) == 0 {
		return nil, errors.New("no leader carries weight")
	}
	slices.SortStableFunc(shuffled, func(a, b entry) int {
		return bytes.Compare(a.hash.Bytes(), b.hash.Bytes())
	})

	// Step 2: a deterministic random source shared by all entries
	hashedSeed := crypto.Keccak256(seed, num[:])
	pseudoRND := rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(hashedSeed[:8]))))

	// Step 3: weighted random sampling via the exponential distribution
	// method: score = random^(1/weight), higher weight -> higher score.
	sequence := make([]entry, 0, len(shuffled))
	for _, e := range shuffled {
		e.score = math.Pow(pseudoRND.Float64(), 1.0/e.weight)
		sequence = append(sequence, e)
	}

	// Step 4: order by score, best first
	slices.SortStableFunc(sequence, func(a, b entry) int {
		if a.score < b.score {
			return 1
		} else if a.score > b.score {
			return -1
		}
		return 0
	})

	return &Scheduler{round: round, sequence: sequence}, nil
}

// Round returns the round this sequence was computed for.
func (s *Scheduler) Round() uint64 {
	return s.round
}

// Sequence returns the scheduled leader order.
func (s *Scheduler) Sequence() []common.Address {
	out := make([]common.Address, len(s.sequence))
	for i, e := range s.sequence {
		out[i] = e.address
	}
	return out
}

// LeaderAt returns the leader of the given slot; slots beyond the sequence
// wrap around.
func (s *Scheduler) LeaderAt(slot uint64) common.Address {
	return s.sequence[slot%uint64(len(s.sequence))].address
}

// IsScheduled returns whether the address holds the given slot.
func (s *Scheduler) IsScheduled(slot uint64, addr common.Address) bool {
	return s.LeaderAt(slot) == addr
}
