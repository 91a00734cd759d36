package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteJournal stores the transaction sequence in a single SQLite table,
// one field-tagged JSON body per row, ordered by sequence number.
//
// It honors the same wholesale contract as FileJournal: Save replaces every
// row inside one transaction, so a reload never sees a partial rewrite.
type SQLiteJournal struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite-backed journal at the given path.
// Applies pragmas and schema automatically; safe to call repeatedly.
func OpenSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal db: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY between the rewrite transaction and loads.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Load implements Journal.
func (j *SQLiteJournal) Load(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT body FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	defer rows.Close()

	txs := []ledger.Transaction{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("load journal: %w", err)
		}
		tx, err := ledger.UnmarshalTransaction([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("load journal: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return txs, nil
}

// Save implements Journal.
func (j *SQLiteJournal) Save(ctx context.Context, txs []ledger.Transaction) error {
	dbtx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions (seq, id, kind, tender_id, body)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	defer stmt.Close()

	for i, tx := range txs {
		body, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("save journal: marshal %s: %w", tx.TransactionID(), err)
		}
		if _, err := stmt.ExecContext(ctx, i+1, tx.TransactionID(), string(tx.Kind()), tx.Tender(), string(body)); err != nil {
			return fmt.Errorf("save journal: insert %s: %w", tx.TransactionID(), err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	return nil
}

// Close implements Journal.
func (j *SQLiteJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
