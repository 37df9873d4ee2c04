// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/jeju-network/jeju-staking/slashdb"
	"github.com/jeju-network/jeju-staking/staker"
)

// Staking exposes the read-only query surface of the engine. Mutations go
// through the engine API only.
type Staking struct {
	eng    *staker.Staker
	events *slashdb.SlashDB
}

func NewStaking(eng *staker.Staker, events *slashdb.SlashDB) *Staking {
	return &Staking{eng, events}
}

// JSONValidator is the wire form of a validator record.
type JSONValidator struct {
	Address           common.Address `json:"address"`
	ValidatorID       uint64         `json:"validatorId"`
	Stake             string         `json:"stake"`
	ReputationScore   uint32         `json:"reputationScore"`
	Status            string         `json:"status"`
	LastBlockProposed uint64         `json:"lastBlockProposed"`
	BlocksProduced    uint64         `json:"blocksProduced"`
	BlocksMissed      uint64         `json:"blocksMissed"`
	TotalEarned       string         `json:"totalEarned"`
	PendingRewards    string         `json:"pendingRewards"`
	RegisteredAt      time.Time      `json:"registeredAt"`
}

func statusName(v *staker.Validator) string {
	switch v.Status {
	case staker.StatusActive:
		return "active"
	case staker.StatusExited:
		return "exited"
	case staker.StatusSlashed:
		return "slashed:" + staker.ReasonName(v.SlashedWith)
	default:
		return "unknown"
	}
}

func convertValidator(v *staker.Validator) *JSONValidator {
	return &JSONValidator{
		Address:           v.Address,
		ValidatorID:       v.ValidatorID,
		Stake:             v.Stake.String(),
		ReputationScore:   v.ReputationScore,
		Status:            statusName(v),
		LastBlockProposed: v.LastBlockProposed,
		BlocksProduced:    v.BlocksProduced,
		BlocksMissed:      v.BlocksMissed,
		TotalEarned:       v.TotalEarned.String(),
		PendingRewards:    v.PendingRewards.String(),
		RegisteredAt:      v.RegisteredAt,
	}
}

// JSONLeader is one active-set entry with its selection weight.
type JSONLeader struct {
	Address common.Address `json:"address"`
	Stake   string         `json:"stake"`
	Weight  string         `json:"weight"`
}

// JSONEpoch is the wire form of a closed epoch record.
type JSONEpoch struct {
	Number         uint64     `json:"number"`
	TotalBlocks    uint64     `json:"totalBlocks"`
	TotalRevenue   string     `json:"totalRevenue"`
	ValidatorShare *string    `json:"validatorShare"`
	TreasuryShare  *string    `json:"treasuryShare"`
	SettledAt      *time.Time `json:"settledAt"`
	Distributed    bool       `json:"distributed"`
}

// JSONSlashing is the wire form of one slashing-log entry.
type JSONSlashing struct {
	Seq       int64          `json:"seq"`
	Validator common.Address `json:"validator"`
	Reason    string         `json:"reason"`
	Amount    string         `json:"amount"`
	Timestamp int64          `json:"timestamp"`
}

func (st *Staking) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(mux.Vars(req)["address"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "address"))
	}
	val, err := st.eng.GetValidator(addr)
	if err != nil {
		return NotFound(err)
	}
	return WriteJSON(w, convertValidator(val))
}

func (st *Staking) handleGetWeight(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(mux.Vars(req)["address"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "address"))
	}
	weight := st.eng.SelectionWeight(addr)
	return WriteJSON(w, map[string]string{"weight": weight.String()})
}

func (st *Staking) handleGetLeaders(w http.ResponseWriter, _ *http.Request) error {
	leaders := st.eng.Leaders()
	out := make([]*JSONLeader, 0, len(leaders))
	for _, l := range leaders {
		out = append(out, &JSONLeader{
			Address: l.Address,
			Stake:   l.Stake.String(),
			Weight:  l.Weight.String(),
		})
	}
	return WriteJSON(w, out)
}

func (st *Staking) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	number, err := strconv.ParseUint(mux.Vars(req)["number"], 10, 64)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "number"))
	}
	ep, err := st.eng.GetEpoch(number)
	if err != nil {
		return NotFound(err)
	}

	out := &JSONEpoch{
		Number:       ep.Number,
		TotalBlocks:  ep.TotalBlocks,
		TotalRevenue: ep.TotalRevenue.String(),
		Distributed:  ep.Distributed,
	}
	if ep.Distributed {
		vs, ts, at := ep.ValidatorShare.String(), ep.TreasuryShare.String(), ep.SettledAt
		out.ValidatorShare, out.TreasuryShare, out.SettledAt = &vs, &ts, &at
	}
	return WriteJSON(w, out)
}

func (st *Staking) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	return WriteJSON(w, map[string]interface{}{
		"totalStaked":     st.eng.TotalStaked().String(),
		"activeCount":     st.eng.ActiveCount(),
		"currentEpoch":    st.eng.CurrentEpoch(),
		"pendingRevenue":  st.eng.PendingRevenue().String(),
		"paused":          st.eng.Paused(),
		"treasuryAddress": st.eng.Treasury(),
	})
}

func (st *Staking) handleGetSlashings(w http.ResponseWriter, req *http.Request) error {
	filter := &slashdb.Filter{Limit: 100}
	if v := req.URL.Query().Get("validator"); v != "" {
		addr, err := parseAddress(v)
		if err != nil {
			return BadRequest(errors.WithMessage(err, "validator"))
		}
		filter.Validator = &addr
	}
	if l := req.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			return BadRequest(errors.New("limit: should be a positive integer"))
		}
		filter.Limit = limit
	}

	events, err := st.events.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	out := make([]*JSONSlashing, 0, len(events))
	for _, ev := range events {
		out = append(out, &JSONSlashing{
			Seq:       ev.Seq,
			Validator: ev.Validator,
			Reason:    staker.ReasonName(ev.Reason),
			Amount:    ev.Amount.String(),
			Timestamp: ev.Timestamp,
		})
	}
	return WriteJSON(w, out)
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.New("invalid address")
	}
	return common.HexToAddress(raw), nil
}

// Mount attaches the staking endpoints to the router under the path prefix.
func (st *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/validators/{address}").
		Methods(http.MethodGet).
		Name("GET /validators/{address}").
		HandlerFunc(WrapHandlerFunc(st.handleGetValidator))
	sub.Path("/validators/{address}/weight").
		Methods(http.MethodGet).
		Name("GET /validators/{address}/weight").
		HandlerFunc(WrapHandlerFunc(st.handleGetWeight))
	sub.Path("/leaders").
		Methods(http.MethodGet).
		Name("GET /leaders").
		HandlerFunc(WrapHandlerFunc(st.handleGetLeaders))
	sub.Path("/epochs/{number}").
		Methods(http.MethodGet).
		Name("GET /epochs/{number}").
		HandlerFunc(WrapHandlerFunc(st.handleGetEpoch))
	sub.Path("/slashings").
		Methods(http.MethodGet).
		Name("GET /slashings").
		HandlerFunc(WrapHandlerFunc(st.handleGetSlashings))
	sub.Path("/totals").
		Methods(http.MethodGet).
		Name("GET /totals").
		HandlerFunc(WrapHandlerFunc(st.handleGetTotals))
}
