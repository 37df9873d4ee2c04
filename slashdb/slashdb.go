// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slashdb persists the append-only slashing-event log in sqlite.
package slashdb

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS slashing_event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	validator BLOB(20) NOT NULL,
	reason INTEGER NOT NULL,
	amount TEXT NOT NULL,
	ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS slashing_event_i0 ON slashing_event(validator);`

// Event is one slashing-log entry. Entries are immutable once written.
type Event struct {
	Seq       int64
	Validator common.Address
	Reason    uint8
	Amount    *big.Int // collateral removed, including any forfeited remainder
	Timestamp int64    // unix seconds
}

// Filter narrows Filter queries. A nil field matches everything.
type Filter struct {
	Validator *common.Address
	Reason    *uint8
	Limit     int
}

type SlashDB struct {
	path string
	db   *sql.DB
}

// New creates or opens the slashing log at the given path.
func New(path string) (slashDB *SlashDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if slashDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}
	return &SlashDB{path, db}, nil
}

// NewMem creates a slashing log in ram.
func NewMem() (*SlashDB, error) {
	return New(":memory:")
}

// Close closes the underlying database.
func (db *SlashDB) Close() error {
	return db.db.Close()
}

func (db *SlashDB) Path() string {
	return db.path
}

// Append writes a new event and returns its sequence number.
func (db *SlashDB) Append(ev *Event) (int64, error) {
	res, err := db.db.Exec(
		"INSERT INTO slashing_event(validator, reason, amount, ts) VALUES(?,?,?,?)",
		ev.Validator.Bytes(), ev.Reason, ev.Amount.String(), ev.Timestamp,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Remove deletes the event with the given sequence number. It compensates an
// append whose surrounding operation failed; settled events must never be
// removed.
func (db *SlashDB) Remove(seq int64) error {
	_, err := db.db.Exec("DELETE FROM slashing_event WHERE seq = ?", seq)
	return err
}

// Count returns the number of recorded events.
func (db *SlashDB) Count() (int64, error) {
	row := db.db.QueryRow("SELECT COUNT(*) FROM slashing_event")
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Filter queries events in insertion order.
func (db *SlashDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	stmt := "SELECT seq, validator, reason, amount, ts FROM slashing_event WHERE 1"
	var args []interface{}
	if filter != nil {
		if filter.Validator != nil {
			stmt += " AND validator = ?"
			args = append(args, filter.Validator.Bytes())
		}
		if filter.Reason != nil {
			stmt += " AND reason = ?"
			args = append(args, *filter.Reason)
		}
	}
	stmt += " ORDER BY seq"
	if filter != nil && filter.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev        Event
			validator []byte
			amount    string
		)
		if err := rows.Scan(&ev.Seq, &validator, &ev.Reason, &amount, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.Validator = common.BytesToAddress(validator)
		ev.Amount, _ = new(big.Int).SetString(amount, 10)
		if ev.Amount == nil {
			return nil, errors.Errorf("corrupted amount for event %d", ev.Seq)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
