// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferlog

import (
	"database/sql"
	"encoding/binary"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
)

// DefaultLimit caps results when a filter sets no limit.
const DefaultLimit = 1000

// TransferLog is an append-only log of committed transfers.
type TransferLog struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New open a transfer log at path.
func New(path string) (*TransferLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// single writer, also keeps a memory db on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(transferTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s, _, _ := sqlite3.Version()
	return &TransferLog{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem create a memory transfer log.
func NewMem() (*TransferLog, error) {
	return New(":memory:")
}

// Insert appends transfers in one transaction, assigning their Seq.
func (tl *TransferLog) Insert(transfers []*Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	tx, err := tl.db.Begin()
	if err != nil {
		return err
	}
	for _, t := range transfers {
		var amount [8]byte
		binary.BigEndian.PutUint64(amount[:], t.Amount)
		res, err := tx.Exec("INSERT INTO transfer(time, op, caller, kind, fromAddress, toAddress, authority, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?);",
			t.Time,
			t.Op,
			t.Caller.Bytes(),
			t.Kind,
			t.From.Bytes(),
			t.To.Bytes(),
			t.Authority.Bytes(),
			amount[:])
		if err != nil {
			tx.Rollback()
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		t.Seq = uint64(seq)
	}
	return tx.Commit()
}

// Filter queries transfers matching f.
func (tl *TransferLog) Filter(f *Filter) ([]*Transfer, error) {
	if f == nil {
		f = &Filter{}
	}
	var (
		stmt  strings.Builder
		args  []any
		where []string
	)
	stmt.WriteString("SELECT seq, time, op, caller, kind, fromAddress, toAddress, authority, amount FROM transfer")
	if f.Address != nil {
		where = append(where, "(fromAddress = ? OR toAddress = ?)")
		args = append(args, f.Address.Bytes(), f.Address.Bytes())
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if len(where) > 0 {
		stmt.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.Order == DESC {
		stmt.WriteString(" ORDER BY seq DESC")
	} else {
		stmt.WriteString(" ORDER BY seq ASC")
	}
	limit := f.Limit
	if limit == 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	stmt.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, f.Offset)

	return tl.query(stmt.String(), args...)
}

func (tl *TransferLog) query(stmt string, args ...any) ([]*Transfer, error) {
	rows, err := tl.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			seq       uint64
			time      int64
			op        string
			caller    []byte
			kind      string
			from      []byte
			to        []byte
			authority []byte
			amount    []byte
		)
		if err := rows.Scan(&seq, &time, &op, &caller, &kind, &from, &to, &authority, &amount); err != nil {
			return nil, err
		}
		if len(amount) != 8 {
			return nil, errors.Errorf("invalid amount of transfer %d", seq)
		}
		transfers = append(transfers, &Transfer{
			Seq:       seq,
			Time:      time,
			Op:        op,
			Caller:    ledger.BytesToAddress(caller),
			Kind:      kind,
			From:      ledger.BytesToAddress(from),
			To:        ledger.BytesToAddress(to),
			Authority: ledger.BytesToAddress(authority),
			Amount:    binary.BigEndian.Uint64(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// Path return db's path.
func (tl *TransferLog) Path() string {
	return tl.path
}

// SQLiteVersion returns the linked sqlite version.
func (tl *TransferLog) SQLiteVersion() string {
	return tl.sqliteVersion
}

// Close close sqlite.
func (tl *TransferLog) Close() error {
	return tl.db.Close()
}
