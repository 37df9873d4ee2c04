// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jeju-network/jeju-staking/slashdb"
)

var (
	ownerAddr       = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	coordinatorAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	treasuryAddr    = common.HexToAddress("0x00000000000000000000000000000000000000cc")

	val1 = common.HexToAddress("0x0000000000000000000000000000000000000001")
	val2 = common.HexToAddress("0x0000000000000000000000000000000000000002")
	val3 = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

type fakeIdentity struct {
	banned map[common.Address]bool
}

func (f *fakeIdentity) Verify(owner common.Address, _ uint64) error {
	if f.banned[owner] {
		return errors.New("identity banned")
	}
	return nil
}

type fakeReputation struct {
	scores map[common.Address]uint32
	err    error
}

func (f *fakeReputation) Score(addr common.Address) (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[addr], nil
}

type fakeFeeConfig struct {
	bps uint32
	err error
}

func (f *fakeFeeConfig) RevenueShareBps() (uint32, error) {
	return f.bps, f.err
}

// fakeRail records transfers and can be told to fail.
type fakeRail struct {
	debits  map[common.Address]*big.Int
	credits map[common.Address]*big.Int

	failDebit  bool
	failCredit bool
}

func newFakeRail() *fakeRail {
	return &fakeRail{
		debits:  make(map[common.Address]*big.Int),
		credits: make(map[common.Address]*big.Int),
	}
}

func (f *fakeRail) Debit(from common.Address, amount *big.Int) error {
	if f.failDebit {
		return errors.New("rail rejected debit")
	}
	if f.debits[from] == nil {
		f.debits[from] = big.NewInt(0)
	}
	f.debits[from].Add(f.debits[from], amount)
	return nil
}

func (f *fakeRail) Credit(to common.Address, amount *big.Int) error {
	if f.failCredit {
		return errors.New("rail rejected credit")
	}
	if f.credits[to] == nil {
		f.credits[to] = big.NewInt(0)
	}
	f.credits[to].Add(f.credits[to], amount)
	return nil
}

func (f *fakeRail) creditedTo(addr common.Address) *big.Int {
	if f.credits[addr] == nil {
		return big.NewInt(0)
	}
	return f.credits[addr]
}

type testEnv struct {
	staker     *Staker
	identity   *fakeIdentity
	reputation *fakeReputation
	rail       *fakeRail
	events     *slashdb.SlashDB
	clock      time.Time
}

// advance moves the injected clock forward.
func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func testConfig() *Config {
	return &Config{
		MinStake:            big.NewInt(1000),
		MaxStake:            big.NewInt(1_000_000),
		MaxValidators:       3,
		EpochDuration:       time.Hour,
		DowntimeThreshold:   10,
		RevenueShareBps:     5000,
		ReputationWeightBps: 5000,
	}
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()

	if cfg == nil {
		cfg = testConfig()
	}
	events, err := slashdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	env := &testEnv{
		identity:   &fakeIdentity{banned: make(map[common.Address]bool)},
		reputation: &fakeReputation{scores: make(map[common.Address]uint32)},
		rail:       newFakeRail(),
		events:     events,
		clock:      time.Unix(1_700_000_000, 0),
	}

	s, err := New(cfg, ownerAddr, coordinatorAddr, treasuryAddr, &Externals{
		Identity:   env.identity,
		Reputation: env.reputation,
		Rail:       env.rail,
		Events:     events,
		Now:        func() time.Time { return env.clock },
	})
	require.NoError(t, err)

	env.staker = s
	return env
}

// register is a shorthand for a successful registration.
func (e *testEnv) register(t *testing.T, addr common.Address, stake int64) {
	t.Helper()
	require.NoError(t, e.staker.Register(addr, uint64(addr.Big().Uint64()), big.NewInt(stake)))
}

// checkTotalsInvariant asserts sum(active stakes) == tracked total.
func checkTotalsInvariant(t *testing.T, s *Staker) {
	t.Helper()

	sum := big.NewInt(0)
	for _, addr := range s.ActiveSet() {
		val, err := s.GetValidator(addr)
		require.NoError(t, err)
		sum.Add(sum, val.Stake)
	}
	require.Zero(t, sum.Cmp(s.TotalStaked()), "active stake sum must equal tracked total")
}
