package invoice

import (
	"errors"
	"fmt"
)

// Transition は遷移表の1行。From の請求書に通知を送った後 To へ進める。
type Transition struct {
	// From は遷移元の状態。
	From State
	// To は遷移先の状態。
	To State
	// Subject は通知メールの件名。
	Subject string
	// Body は通知メールの本文。
	Body string
}

// Pipeline は督促ワークフローの遷移表（パイプライン順）。
var Pipeline = []Transition{
	{
		From:    StateFirstReminder,
		To:      StateSecondReminder,
		Subject: "Recordatorio de Factura",
		Body:    "Su factura ha pasado a segundo recordatorio.",
	},
	{
		From:    StateSecondReminder,
		To:      StateDeactivated,
		Subject: "Desactivación de Factura",
		Body:    "Su factura será desactivada.",
	},
}

// NextTransition は状態 s を遷移元とする遷移を返す。
// 終端状態や未定義の状態では false を返す。
func NextTransition(s State) (Transition, bool) {
	for _, t := range Pipeline {
		if t.From == s {
			return t, true
		}
	}
	return Transition{}, false
}

// ActiveStates は通知対象となる（終端でない）状態をパイプライン順に返す。
func ActiveStates() []State {
	out := make([]State, 0, len(Pipeline))
	for _, t := range Pipeline {
		out = append(out, t.From)
	}
	return out
}

// ValidatePipeline は遷移表が前進のみの連続した1本の列になっていることを検証する。
// 入口は StateFirstReminder、終端は StateDeactivated でなければならない。
func ValidatePipeline(p []Transition) error {
	if len(p) == 0 {
		return errors.New("遷移表が空です")
	}
	if p[0].From != StateFirstReminder {
		return fmt.Errorf("遷移表の入口が不正: %s", p[0].From)
	}
	seen := make(map[State]bool, len(p)+1)
	for i, t := range p {
		if !t.From.Valid() || !t.To.Valid() {
			return fmt.Errorf("遷移表 %d 行目に未定義の状態: %s -> %s", i, t.From, t.To)
		}
		if t.Subject == "" || t.Body == "" {
			return fmt.Errorf("遷移表 %d 行目の通知文が空です", i)
		}
		if seen[t.From] {
			return fmt.Errorf("遷移表で状態 %s が再訪されています", t.From)
		}
		seen[t.From] = true
		if i > 0 && p[i-1].To != t.From {
			return fmt.Errorf("遷移表 %d 行目が前の行と連続していません: %s -> %s", i, p[i-1].To, t.From)
		}
	}
	last := p[len(p)-1].To
	if seen[last] {
		return fmt.Errorf("遷移表の終端 %s が遷移元にも現れています", last)
	}
	if last != StateDeactivated {
		return fmt.Errorf("遷移表の終端が不正: %s", last)
	}
	return nil
}
