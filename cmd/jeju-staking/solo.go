// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Dev-mode collaborators. The engine normally fronts on-chain identity,
// reputation and token contracts; the solo daemon substitutes permissive
// in-process stand-ins so the engine and its API can run by themselves.

type soloIdentity struct{}

func (soloIdentity) Verify(common.Address, uint64) error { return nil }

type soloReputation struct{}

// Score returns zero so the engine applies its neutral default.
func (soloReputation) Score(common.Address) (uint32, error) { return 0, nil }

// soloRail keeps a signed in-memory balance per address instead of moving
// real tokens. Every transfer succeeds.
type soloRail struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

func newSoloRail() *soloRail {
	return &soloRail{balances: make(map[common.Address]*big.Int)}
}

func (r *soloRail) adjust(addr common.Address, delta *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balances[addr] == nil {
		r.balances[addr] = big.NewInt(0)
	}
	r.balances[addr].Add(r.balances[addr], delta)
}

func (r *soloRail) Debit(from common.Address, amount *big.Int) error {
	r.adjust(from, new(big.Int).Neg(amount))
	logger.Debug("solo rail debit", "from", from, "amount", amount)
	return nil
}

func (r *soloRail) Credit(to common.Address, amount *big.Int) error {
	r.adjust(to, amount)
	logger.Debug("solo rail credit", "to", to, "amount", amount)
	return nil
}
