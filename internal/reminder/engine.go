package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/reminder/internal/invoice"
	"github.com/nao1215/reminder/internal/metrics"
)

// Store は請求書の永続化層に対してエンジンが必要とする操作。
type Store interface {
	// FindByState は指定状態の請求書をすべて返す。
	FindByState(ctx context.Context, state invoice.State) ([]invoice.Invoice, error)
	// UpdateStateIfCurrent は現在の状態が expected の場合に限り next へ更新する。
	UpdateStateIfCurrent(ctx context.Context, id string, expected, next invoice.State) (invoice.UpdateResult, error)
}

// Notifier は督促メールの送信手段。
type Notifier interface {
	// Send は宛先にメッセージを送信する。ctxの期限を守ること。
	Send(ctx context.Context, to, subject, body string) error
}

// ErrStoreUnavailable はどの状態の一覧取得も成功せず、スイープを実行できなかったことを表す。
var ErrStoreUnavailable = errors.New("請求書ストアに接続できません")

// errNoRecipient は送信先メールアドレスが空の場合のエラー。
var errNoRecipient = errors.New("送信先メールアドレスが空です")

const (
	// DefaultNotifyTimeout は通知1件あたりのタイムアウトの既定値。
	DefaultNotifyTimeout = 10 * time.Second
	// DefaultCommitTimeout は状態更新1件あたりのタイムアウトの既定値。
	DefaultCommitTimeout = 5 * time.Second
	// DefaultConcurrency はバッチ内で同時に処理する請求書数の既定値。
	DefaultConcurrency = 4
)

// Config はエンジンの動作設定。ゼロ値の項目には既定値を使う。
type Config struct {
	// NotifyTimeout は通知1件あたりのタイムアウト。
	NotifyTimeout time.Duration
	// CommitTimeout は状態更新1件あたりのタイムアウト。
	CommitTimeout time.Duration
	// Concurrency はバッチ内で同時に処理する請求書数の上限。
	Concurrency int
	// Pipeline は遷移表。nilの場合は invoice.Pipeline を使う。
	Pipeline []invoice.Transition
}

// Engine は督促ワークフローの状態遷移エンジン。
type Engine struct {
	store    Store
	notifier Notifier
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine は新しいエンジンを生成する。遷移表が不正な場合はエラーを返す。
func NewEngine(store Store, notifier Notifier, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("請求書ストアが指定されていません")
	}
	if notifier == nil {
		return nil, errors.New("通知手段が指定されていません")
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = DefaultCommitTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = invoice.Pipeline
	}
	if err := invoice.ValidatePipeline(cfg.Pipeline); err != nil {
		return nil, fmt.Errorf("遷移表が不正です: %w", err)
	}

	return &Engine{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("component", "reminder").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// batch はある状態の一覧取得結果。
type batch struct {
	transition invoice.Transition
	invoices   []invoice.Invoice
}

// ProcessReminders は督促スイープを1回実行する。
//
// まず遷移表の順に各状態の請求書一覧を取得し、その後、同じ順にバッチを処理する。
// 一覧はすべての更新より前に取得するため、このスイープで第1督促から進めた
// 請求書が同じスイープ内で無効化まで進むことはない。
//
// 請求書ごとの失敗は Report に記録して処理を続ける。どの状態の一覧も取得
// できなかった場合に限り ErrStoreUnavailable を返す（Report も返す）。
func (e *Engine) ProcessReminders(ctx context.Context) (*Report, error) {
	started := e.now()
	runID := uuid.New().String()
	log := e.logger.With().Str("run_id", runID).Logger()
	rec := newRecorder(runID, started, e.cfg.Pipeline)

	log.Info().Msg("督促スイープを開始します")

	batches := make([]batch, 0, len(e.cfg.Pipeline))
	for _, t := range e.cfg.Pipeline {
		invoices, err := e.store.FindByState(ctx, t.From)
		if err != nil {
			rec.queryFailure(t, err)
			metrics.IncStoreQueryFailure(string(t.From))
			log.Error().Err(err).Str("state", string(t.From)).Msg("請求書一覧の取得に失敗したため、この状態のバッチをスキップします")
			continue
		}
		batches = append(batches, batch{transition: t, invoices: invoices})
	}

	if len(batches) == 0 {
		report := rec.finish(e.now(), true)
		e.observe(log, report)
		return report, fmt.Errorf("%w: 全 %d 状態の一覧取得に失敗しました", ErrStoreUnavailable, len(e.cfg.Pipeline))
	}

	for _, b := range batches {
		if ctx.Err() != nil {
			break
		}
		e.processBatch(ctx, log, rec, b)
	}

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Msg("スイープが中断されました。未処理の請求書は次回に処理されます")
	}

	report := rec.finish(e.now(), false)
	e.observe(log, report)
	return report, nil
}

// processBatch は1つの状態のバッチを上限付きの並行度で処理する。
func (e *Engine) processBatch(ctx context.Context, log zerolog.Logger, rec *recorder, b batch) {
	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)

	for _, inv := range b.invoices {
		if ctx.Err() != nil {
			break
		}
		if rec.wasAdvanced(inv.ID) {
			continue
		}
		g.Go(func() error {
			e.advance(ctx, log, rec, b.transition, inv)
			return nil
		})
	}
	_ = g.Wait()
}

// advance は請求書1件に通知を送り、成功した場合のみ状態を進める。
func (e *Engine) advance(ctx context.Context, log zerolog.Logger, rec *recorder, t invoice.Transition, inv invoice.Invoice) {
	if ctx.Err() != nil {
		// 未着手の請求書は次回のスイープで処理する
		return
	}
	log = log.With().Str("invoice_id", inv.ID).Str("from", string(t.From)).Str("to", string(t.To)).Logger()

	if err := e.notify(ctx, t, inv); err != nil {
		rec.fail(inv, t, KindNotifyFailure, err)
		metrics.IncTransition(string(t.From), string(t.To), string(KindNotifyFailure))
		log.Warn().Err(err).Msg("通知の送信に失敗しました。状態は変更しません")
		return
	}

	// 送信済みの通知に対応する更新は、呼び出し元のキャンセル後も完了させる
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.CommitTimeout)
	defer cancel()

	res, err := e.store.UpdateStateIfCurrent(commitCtx, inv.ID, t.From, t.To)
	switch {
	case err != nil:
		rec.fail(inv, t, KindCommitFailure, err)
		metrics.IncTransition(string(t.From), string(t.To), string(KindCommitFailure))
		log.Error().Err(err).Msg("通知送信後の状態更新に失敗しました")
	case res == invoice.Updated:
		rec.advance(inv, t)
		metrics.IncTransition(string(t.From), string(t.To), string(ResultAdvanced))
		log.Debug().Msg("請求書の状態を進めました")
	default:
		rec.skip(inv, t)
		metrics.IncTransition(string(t.From), string(t.To), string(ResultSkipped))
		log.Info().Str("result", res.String()).Msg("請求書の状態が変わっていたため更新をスキップしました")
	}
}

// notify は通知をタイムアウト付きで送信する。
// 送信を開始した後は呼び出し元のキャンセルではなくタイムアウトのみで打ち切る。
// Notifier がctxを無視して戻らない場合でも、タイムアウトでスイープを先に進める。
func (e *Engine) notify(ctx context.Context, t invoice.Transition, inv invoice.Invoice) error {
	if strings.TrimSpace(inv.Email) == "" {
		return errNoRecipient
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.NotifyTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.notifier.Send(nctx, inv.Email, t.Subject, t.Body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("通知の送信に失敗: %w", err)
		}
		return nil
	case <-nctx.Done():
		return fmt.Errorf("通知がタイムアウトしました: %w", nctx.Err())
	}
}

func (e *Engine) observe(log zerolog.Logger, r *Report) {
	metrics.ObserveSweep(string(r.Status), r.FinishedAt.Sub(r.StartedAt).Seconds())

	ev := log.Info()
	if r.Status != StatusSucceeded {
		ev = log.Warn()
	}
	ev.Str("status", string(r.Status)).
		Int("transitions", r.Transitions).
		Int("skipped", r.Skipped).
		Int("failures", len(r.Failures)).
		Dur("elapsed", r.FinishedAt.Sub(r.StartedAt)).
		Msg("督促スイープが完了しました")
}
