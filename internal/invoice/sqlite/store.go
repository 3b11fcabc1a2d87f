// Package sqlite はSQLiteを使った請求書ストアを提供する。
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nao1215/reminder/internal/invoice"
	invoicedb "github.com/nao1215/reminder/internal/invoice/db"
	"github.com/nao1215/reminder/pkg/event"
	"github.com/nao1215/reminder/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// MemoryPath はインメモリDBを開くためのパス。
const MemoryPath = ":memory:"

// Store はSQLiteに永続化された請求書ストア。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *invoicedb.Queries
	// now は現在時刻を返す関数。テストで差し替える。
	now func() time.Time
}

// Open は指定パスのSQLiteデータベースを開き、マイグレーションを適用する。
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("SQLiteのパスが指定されていません")
	}

	dsn := MemoryPath + "?_pragma=foreign_keys(ON)"
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == MemoryPath {
		// :memory: は接続ごとに別DBになるため接続数を1に固定する
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("データベース接続確認に失敗: %w", err)
	}
	if err := migration.Run(ctx, sqlDB, migrations, "migrations", logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return &Store{
		db:      sqlDB,
		queries: invoicedb.New(sqlDB),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert は請求書を登録する。請求書の作成は外部システムの責務であり、
// 本メソッドは取り込みやテストデータ投入に使う。
func (s *Store) Insert(ctx context.Context, inv invoice.Invoice) error {
	if !inv.State.Valid() {
		return fmt.Errorf("%w: %q", invoice.ErrUnknownState, inv.State)
	}
	err := s.queries.CreateInvoice(ctx, invoicedb.CreateInvoiceParams{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Number:     inv.Number,
		IssuedAt:   toMillis(inv.IssuedAt),
		Email:      inv.Email,
		State:      string(inv.State),
		UpdatedAt:  toMillis(s.now()),
	})
	if err != nil {
		return fmt.Errorf("請求書の登録に失敗: %w", err)
	}
	return nil
}

// Get はIDで請求書を取得する。存在しない場合は invoice.ErrNotFound を返す。
func (s *Store) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	row, err := s.queries.GetInvoiceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("請求書の取得に失敗: %w", err)
	}
	return toInvoice(row)
}

// FindByState は指定状態の請求書をすべて返す。
func (s *Store) FindByState(ctx context.Context, state invoice.State) ([]invoice.Invoice, error) {
	rows, err := s.queries.ListInvoicesByState(ctx, string(state))
	if err != nil {
		return nil, fmt.Errorf("状態 %s の請求書一覧取得に失敗: %w", state, err)
	}

	invoices := make([]invoice.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := toInvoice(row)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// UpdateStateIfCurrent は現在の状態が expected の場合に限り next へ更新する。
// 更新と監査イベントの追記は同一トランザクションで行う。
func (s *Store) UpdateStateIfCurrent(ctx context.Context, id string, expected, next invoice.State) (invoice.UpdateResult, error) {
	ev, err := event.NewTransition(id, string(expected), string(next), next.Terminal())
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	q := s.queries.WithTx(tx)
	affected, err := q.UpdateInvoiceStateIfCurrent(ctx, invoicedb.UpdateInvoiceStateIfCurrentParams{
		State:     string(next),
		UpdatedAt: toMillis(s.now()),
		ID:        id,
		State_2:   string(expected),
	})
	if err != nil {
		return 0, fmt.Errorf("請求書 %s の状態更新に失敗: %w", id, err)
	}

	if affected == 0 {
		count, err := q.CountInvoicesByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("請求書 %s の存在確認に失敗: %w", id, err)
		}
		if count == 0 {
			return invoice.NotFound, nil
		}
		return invoice.Conflict, nil
	}

	if err := q.CreateInvoiceEvent(ctx, invoicedb.CreateInvoiceEventParams{
		ID:        ev.ID,
		InvoiceID: id,
		EventType: string(ev.EventType),
		Data:      string(ev.Data),
		CreatedAt: toMillis(ev.CreatedAt),
	}); err != nil {
		return 0, fmt.Errorf("請求書 %s の監査イベント記録に失敗: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("請求書 %s の状態更新のコミットに失敗: %w", id, err)
	}
	return invoice.Updated, nil
}

// Events は請求書の監査イベントを古い順に返す。
func (s *Store) Events(ctx context.Context, id string) ([]event.Event, error) {
	rows, err := s.queries.ListInvoiceEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("請求書 %s のイベント取得に失敗: %w", id, err)
	}

	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, event.Event{
			ID:            row.ID,
			AggregateID:   row.InvoiceID,
			AggregateType: event.AggregateTypeInvoice,
			EventType:     event.Type(row.EventType),
			Data:          []byte(row.Data),
			CreatedAt:     fromMillis(row.CreatedAt),
		})
	}
	return events, nil
}

func toInvoice(row invoicedb.Invoice) (invoice.Invoice, error) {
	state, err := invoice.ParseState(row.State)
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("請求書 %s: %w", row.ID, err)
	}
	return invoice.Invoice{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		Number:     row.Number,
		IssuedAt:   fromMillis(row.IssuedAt),
		Email:      row.Email,
		State:      state,
	}, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
