package invoice

import (
	"errors"
	"fmt"
	"time"
)

// State は請求書の督促状態を表す。
// 値はDBに永続化される文字列と一致する。
type State string

const (
	// StateFirstReminder はワークフローの入口となる状態（第1督促）。
	StateFirstReminder State = "primerrecordatorio"
	// StateSecondReminder は第1督促の通知後に遷移する状態（第2督促）。
	StateSecondReminder State = "segundorecordatorio"
	// StateDeactivated は終端状態。以後の通知や遷移は行わない。
	StateDeactivated State = "desactivado"
)

// ErrUnknownState は定義されていない状態文字列を受け取った場合のエラー。
var ErrUnknownState = errors.New("未定義の請求書状態")

// ErrNotFound は指定IDの請求書が存在しない場合のエラー。
var ErrNotFound = errors.New("請求書が見つかりません")

// states は定義済みの全状態。
var states = []State{StateFirstReminder, StateSecondReminder, StateDeactivated}

// States は定義済みの全状態をパイプライン順に返す。
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// ParseState は文字列を State に変換する。未定義の値は ErrUnknownState を返す。
func ParseState(s string) (State, error) {
	for _, st := range states {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// Valid は定義済みの状態かどうかを返す。
func (s State) Valid() bool {
	_, err := ParseState(string(s))
	return err == nil
}

// Terminal は終端状態かどうかを返す。
// 遷移表に遷移元として現れない定義済み状態を終端とみなす。
func (s State) Terminal() bool {
	if !s.Valid() {
		return false
	}
	_, ok := NextTransition(s)
	return !ok
}

func (s State) String() string {
	return string(s)
}

// Invoice は督促対象の請求書。
// 作成は外部の請求システムが行い、本システムは状態のみを更新する。
type Invoice struct {
	// ID は請求書の一意識別子。
	ID string `json:"id"`
	// CustomerID は顧客の識別子。
	CustomerID string `json:"customer_id"`
	// Number は請求書番号。
	Number string `json:"number"`
	// IssuedAt は請求書の発行日時。
	IssuedAt time.Time `json:"issued_at"`
	// Email は督促メールの送信先。
	Email string `json:"email"`
	// State は現在の督促状態。
	State State `json:"state"`
}
