// Package memory はプロセス内メモリに保持する請求書ストアを提供する。
// 開発時の動作確認とテストで使用する。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nao1215/reminder/internal/invoice"
	"github.com/nao1215/reminder/pkg/event"
)

// Store はメモリ上の請求書ストア。並行アクセスに対して安全。
type Store struct {
	mu       sync.RWMutex
	invoices map[string]invoice.Invoice
	events   map[string][]event.Event
}

// New は請求書を初期データとして持つストアを生成する。
func New(invoices ...invoice.Invoice) *Store {
	s := &Store{
		invoices: make(map[string]invoice.Invoice, len(invoices)),
		events:   make(map[string][]event.Event),
	}
	for _, inv := range invoices {
		s.invoices[inv.ID] = inv
	}
	return s
}

// Close は何もしない。他のストア実装とインターフェースを揃えるために存在する。
func (s *Store) Close() error { return nil }

// Ping は常に成功する。
func (s *Store) Ping(context.Context) error { return nil }

// Insert は請求書を登録する。同じIDが既に存在する場合はエラーを返す。
func (s *Store) Insert(_ context.Context, inv invoice.Invoice) error {
	if !inv.State.Valid() {
		return fmt.Errorf("%w: %q", invoice.ErrUnknownState, inv.State)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; ok {
		return fmt.Errorf("請求書 %s は既に存在します", inv.ID)
	}
	s.invoices[inv.ID] = inv
	return nil
}

// Get はIDで請求書を取得する。
func (s *Store) Get(_ context.Context, id string) (invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return inv, nil
}

// FindByState は指定状態の請求書をID順に返す。返り値は呼び出し時点のスナップショット。
func (s *Store) FindByState(ctx context.Context, state invoice.State) ([]invoice.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if inv.State == state {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateStateIfCurrent は現在の状態が expected の場合に限り next へ更新する。
func (s *Store) UpdateStateIfCurrent(ctx context.Context, id string, expected, next invoice.State) (invoice.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ev, err := event.NewTransition(id, string(expected), string(next), next.Terminal())
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return invoice.NotFound, nil
	}
	if inv.State != expected {
		return invoice.Conflict, nil
	}
	inv.State = next
	s.invoices[id] = inv
	s.events[id] = append(s.events[id], *ev)
	return invoice.Updated, nil
}

// Events は請求書の監査イベントを古い順に返す。
func (s *Store) Events(_ context.Context, id string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, len(s.events[id]))
	copy(out, s.events[id])
	return out, nil
}
