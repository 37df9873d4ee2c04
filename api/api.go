// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the engine's read-only queries over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/jeju-network/jeju-staking/slashdb"
	"github.com/jeju-network/jeju-staking/staker"
)

// New returns the api handler.
func New(eng *staker.Staker, events *slashdb.SlashDB) http.HandlerFunc {
	router := mux.NewRouter()
	NewStaking(eng, events).Mount(router, "/staking")

	handler := handlers.CompressHandler(router)
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		handler.ServeHTTP(w, req)
	}
}
