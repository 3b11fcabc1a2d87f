package reminder

import (
	"sort"
	"sync"
	"time"

	"github.com/nao1215/reminder/internal/invoice"
)

// FailureKind は請求書1件（または状態1つ分の一覧取得）の失敗の種類。
type FailureKind string

const (
	// KindNotifyFailure は通知の送信失敗またはタイムアウト。請求書の状態は変わらず、次回のスイープで再試行される。
	KindNotifyFailure FailureKind = "notify_failure"
	// KindCommitConflict は条件付き更新の前提（現在の状態）が成り立たなかったこと。
	// 並行したスイープが先に進めた場合などに起こり、失敗としては扱わない。
	KindCommitConflict FailureKind = "commit_conflict"
	// KindCommitFailure は競合以外の理由による状態更新の失敗。送信済みの通知は再送しない。
	KindCommitFailure FailureKind = "commit_failure"
	// KindStoreQueryFailure は状態ごとの一覧取得の失敗。その状態のバッチは今回スキップされる。
	KindStoreQueryFailure FailureKind = "store_query_failure"
)

// Status はスイープ全体の結果。
type Status string

const (
	// StatusSucceeded はすべての処理が成功したこと（対象0件を含む）。
	StatusSucceeded Status = "succeeded"
	// StatusPartial は一部の請求書または状態で失敗があったこと。
	StatusPartial Status = "partial"
	// StatusFailed はどの状態のバッチも実行できなかったこと。
	StatusFailed Status = "failed"
)

// Result は請求書1件の処理結果。
type Result string

const (
	// ResultAdvanced は通知を送信し状態を進めたこと。
	ResultAdvanced Result = "advanced"
	// ResultSkipped は競合または請求書の消失により状態を進めなかったこと。
	ResultSkipped Result = "skipped"
	// ResultFailed は失敗したこと。種類は Kind を参照する。
	ResultFailed Result = "failed"
)

// Failure は失敗1件の記述。
type Failure struct {
	// InvoiceID は失敗した請求書のID。一覧取得の失敗では空になる。
	InvoiceID string `json:"invoice_id,omitempty"`
	// From は試みた遷移の遷移元。
	From invoice.State `json:"from"`
	// To は試みた遷移の遷移先。
	To invoice.State `json:"to"`
	// Kind は失敗の種類。
	Kind FailureKind `json:"kind"`
	// Message はエラーメッセージ。
	Message string `json:"message"`
}

// Outcome は請求書1件の処理結果。
type Outcome struct {
	InvoiceID string        `json:"invoice_id"`
	From      invoice.State `json:"from"`
	To        invoice.State `json:"to"`
	Result    Result        `json:"result"`
	Kind      FailureKind   `json:"kind,omitempty"`
}

// Report はスイープ1回分の集計結果。
type Report struct {
	// RunID はスイープの一意識別子。
	RunID string `json:"run_id"`
	// Status はスイープ全体の結果。
	Status Status `json:"status"`
	// StartedAt はスイープの開始日時。
	StartedAt time.Time `json:"started_at"`
	// FinishedAt はスイープの終了日時。
	FinishedAt time.Time `json:"finished_at"`
	// Transitions は状態を進めた請求書の件数。
	Transitions int `json:"transitions"`
	// Skipped は競合等で状態を進めなかった請求書の件数。
	Skipped int `json:"skipped"`
	// Failures は失敗の一覧。競合は含まない。
	Failures []Failure `json:"failures"`
	// Outcomes は請求書ごとの処理結果。
	Outcomes []Outcome `json:"outcomes"`
}

// recorder はスイープ中に並行して結果を書き込むための集計器。
type recorder struct {
	mu       sync.Mutex
	report   *Report
	advanced map[string]bool
	stage    map[invoice.State]int
}

func newRecorder(runID string, startedAt time.Time, pipeline []invoice.Transition) *recorder {
	stage := make(map[invoice.State]int, len(pipeline))
	for i, t := range pipeline {
		stage[t.From] = i
	}
	return &recorder{
		report: &Report{
			RunID:     runID,
			StartedAt: startedAt,
			Failures:  []Failure{},
			Outcomes:  []Outcome{},
		},
		advanced: make(map[string]bool),
		stage:    stage,
	}
}

func (r *recorder) wasAdvanced(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advanced[id]
}

func (r *recorder) advance(inv invoice.Invoice, t invoice.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanced[inv.ID] = true
	r.report.Transitions++
	r.report.Outcomes = append(r.report.Outcomes, Outcome{
		InvoiceID: inv.ID, From: t.From, To: t.To, Result: ResultAdvanced,
	})
}

func (r *recorder) skip(inv invoice.Invoice, t invoice.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Skipped++
	r.report.Outcomes = append(r.report.Outcomes, Outcome{
		InvoiceID: inv.ID, From: t.From, To: t.To, Result: ResultSkipped, Kind: KindCommitConflict,
	})
}

func (r *recorder) fail(inv invoice.Invoice, t invoice.Transition, kind FailureKind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Failures = append(r.report.Failures, Failure{
		InvoiceID: inv.ID, From: t.From, To: t.To, Kind: kind, Message: err.Error(),
	})
	r.report.Outcomes = append(r.report.Outcomes, Outcome{
		InvoiceID: inv.ID, From: t.From, To: t.To, Result: ResultFailed, Kind: kind,
	})
}

func (r *recorder) queryFailure(t invoice.Transition, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Failures = append(r.report.Failures, Failure{
		From: t.From, To: t.To, Kind: KindStoreQueryFailure, Message: err.Error(),
	})
}

// finish は結果を確定する。出力順を安定させるため段階順・ID順に並べ替える。
func (r *recorder) finish(finishedAt time.Time, storeUnavailable bool) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := r.report
	rep.FinishedAt = finishedAt
	sort.SliceStable(rep.Outcomes, func(i, j int) bool {
		a, b := rep.Outcomes[i], rep.Outcomes[j]
		if r.stage[a.From] != r.stage[b.From] {
			return r.stage[a.From] < r.stage[b.From]
		}
		return a.InvoiceID < b.InvoiceID
	})
	sort.SliceStable(rep.Failures, func(i, j int) bool {
		a, b := rep.Failures[i], rep.Failures[j]
		if r.stage[a.From] != r.stage[b.From] {
			return r.stage[a.From] < r.stage[b.From]
		}
		return a.InvoiceID < b.InvoiceID
	})

	switch {
	case storeUnavailable:
		rep.Status = StatusFailed
	case len(rep.Failures) > 0:
		rep.Status = StatusPartial
	default:
		rep.Status = StatusSucceeded
	}
	return rep
}
