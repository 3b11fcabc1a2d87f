package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nao1215/reminder/internal/config"
	"github.com/nao1215/reminder/internal/invoice/memory"
	"github.com/nao1215/reminder/internal/invoice/postgres"
	"github.com/nao1215/reminder/internal/invoice/sqlite"
	"github.com/nao1215/reminder/internal/mail"
	"github.com/nao1215/reminder/internal/reminder"
)

// invoiceStore はエンジンと管理用APIの両方が使う請求書ストア。
type invoiceStore interface {
	reminder.Store
	reminder.InvoiceReader
	Close() error
}

// app は設定から組み立てた実行時の依存関係。
type app struct {
	cfg    config.Config
	store  invoiceStore
	engine *reminder.Engine
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (invoiceStore, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMemory:
		logger.Warn().Msg("インメモリストアを使用します。プロセス終了時にデータは失われます")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("未知のストア種別です: %q", cfg.StoreDriver)
	}
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("請求書ストアの初期化に失敗: %w", err)
	}

	sender, err := mail.New(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	engine, err := reminder.NewEngine(store, sender, reminder.Config{
		NotifyTimeout: cfg.NotifyTimeout,
		Concurrency:   cfg.SweepConcurrency,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: store, engine: engine}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
