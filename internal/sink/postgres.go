package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS session_events (
		id          UUID PRIMARY KEY,
		session_id  UUID NOT NULL,
		seq         INTEGER NOT NULL,
		public      BOOLEAN NOT NULL,
		player_id   INTEGER NOT NULL,
		player_name TEXT NOT NULL,
		event_type  TEXT NOT NULL,
		payload     JSONB NOT NULL,
		received_at TIMESTAMPTZ NOT NULL,
		UNIQUE (session_id, seq)
	)
`

// Postgres archives records into the session_events table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and makes sure the table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if _, err := pool.Exec(ctx, createEventsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create session_events: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Write inserts records in one transaction. Records already stored are skipped.
func (p *Postgres) Write(ctx context.Context, records []Record) error {
	return beginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertRecordTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert record %d: %w", rec.Seq, err)
			}
		}
		return nil
	})
}

func insertRecordTx(ctx context.Context, tx pgx.Tx, rec Record) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO session_events (
			id, session_id, seq, public, player_id, player_name, event_type, payload, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id, seq) DO NOTHING
	`
	_, err = tx.Exec(ctx, q,
		rec.ID, rec.SessionID, rec.Seq, rec.Public, rec.PlayerID, rec.PlayerName,
		rec.EventType, payload, time.UnixMilli(rec.ReceivedAt),
	)
	return err
}

// Load returns the stored records of session ordered by seq.
func (p *Postgres) Load(ctx context.Context, sessionID uuid.UUID) ([]Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, session_id, seq, public, player_id, player_name, event_type, payload, received_at
		FROM session_events WHERE session_id = $1 ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session_events: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var (
			rec     Record
			payload []byte
			at      time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Seq, &rec.Public, &rec.PlayerID,
			&rec.PlayerName, &rec.EventType, &payload, &at); err != nil {
			return nil, fmt.Errorf("scan session_events: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of record %d: %w", rec.Seq, err)
		}
		rec.ReceivedAt = at.UnixMilli()
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// beginTxFunc runs f in a transaction, committing on success and rolling back on error.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
