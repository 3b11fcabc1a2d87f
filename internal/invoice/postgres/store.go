// Package postgres はPostgreSQLを使った請求書ストアを提供する。
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nao1215/reminder/internal/invoice"
	"github.com/nao1215/reminder/pkg/event"
)

// schema はPostgreSQL用のスキーマ定義。
//
//go:embed schema.sql
var schema string

// Store はPostgreSQLに永続化された請求書ストア。
type Store struct {
	pool *pgxpool.Pool
}

// Open は接続プールを生成し、スキーマを適用する。
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URLが指定されていません")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("データベース接続確認に失敗: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return &Store{pool: pool}, nil
}

// New は既存の接続プールからストアを生成する。スキーマは適用済みであること。
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close は接続プールを閉じる。
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const selectColumns = `id, customer_id, number, issued_at, email, state`

// Insert は請求書を登録する。
func (s *Store) Insert(ctx context.Context, inv invoice.Invoice) error {
	if !inv.State.Valid() {
		return fmt.Errorf("%w: %q", invoice.ErrUnknownState, inv.State)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invoices (id, customer_id, number, issued_at, email, state) VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.CustomerID, inv.Number, inv.IssuedAt.UTC(), inv.Email, string(inv.State),
	)
	if err != nil {
		return fmt.Errorf("請求書の登録に失敗: %w", err)
	}
	return nil
}

// Get はIDで請求書を取得する。
func (s *Store) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("請求書の取得に失敗: %w", err)
	}
	return inv, nil
}

// FindByState は指定状態の請求書をすべて返す。
func (s *Store) FindByState(ctx context.Context, state invoice.State) ([]invoice.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM invoices WHERE state = $1 ORDER BY issued_at, id`, string(state))
	if err != nil {
		return nil, fmt.Errorf("状態 %s の請求書一覧取得に失敗: %w", state, err)
	}
	defer rows.Close()

	var out []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("状態 %s の請求書読み取りに失敗: %w", state, err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("状態 %s の請求書一覧取得に失敗: %w", state, err)
	}
	return out, nil
}

// UpdateStateIfCurrent は現在の状態が expected の場合に限り next へ更新する。
// 更新と監査イベントの追記は同一トランザクションで行う。
func (s *Store) UpdateStateIfCurrent(ctx context.Context, id string, expected, next invoice.State) (invoice.UpdateResult, error) {
	ev, err := event.NewTransition(id, string(expected), string(next), next.Terminal())
	if err != nil {
		return 0, err
	}

	var result invoice.UpdateResult
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE invoices SET state = $1, updated_at = now() WHERE id = $2 AND state = $3`,
			string(next), id, string(expected))
		if err != nil {
			return fmt.Errorf("請求書 %s の状態更新に失敗: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("請求書 %s の存在確認に失敗: %w", id, err)
			}
			result = invoice.Conflict
			if !exists {
				result = invoice.NotFound
			}
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO invoice_events (id, invoice_id, event_type, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
			ev.ID, id, string(ev.EventType), ev.Data, ev.CreatedAt); err != nil {
			return fmt.Errorf("請求書 %s の監査イベント記録に失敗: %w", id, err)
		}
		result = invoice.Updated
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// Events は請求書の監査イベントを古い順に返す。
func (s *Store) Events(ctx context.Context, id string) ([]event.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, invoice_id, event_type, data, created_at FROM invoice_events WHERE invoice_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("請求書 %s のイベント取得に失敗: %w", id, err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var (
			ev        event.Event
			eventType string
			data      []byte
			createdAt time.Time
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &eventType, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("請求書 %s のイベント読み取りに失敗: %w", id, err)
		}
		ev.AggregateType = event.AggregateTypeInvoice
		ev.EventType = event.Type(eventType)
		ev.Data = data
		ev.CreatedAt = createdAt.UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanInvoice(row pgx.Row) (invoice.Invoice, error) {
	var (
		inv      invoice.Invoice
		state    string
		issuedAt time.Time
	)
	if err := row.Scan(&inv.ID, &inv.CustomerID, &inv.Number, &issuedAt, &inv.Email, &state); err != nil {
		return invoice.Invoice{}, err
	}
	st, err := invoice.ParseState(state)
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("請求書 %s: %w", inv.ID, err)
	}
	inv.State = st
	inv.IssuedAt = issuedAt.UTC()
	return inv, nil
}
