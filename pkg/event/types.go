package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeInvoice は請求書エンティティを表す。
	AggregateTypeInvoice AggregateType = "Invoice"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeReminderAdvanced は督促通知の送信後に請求書が次の督促段階へ進んだことを表す。
	TypeReminderAdvanced Type = "ReminderAdvanced"
	// TypeInvoiceDeactivated は督促通知の送信後に請求書が無効化されたことを表す。
	TypeInvoiceDeactivated Type = "InvoiceDeactivated"
)

// Event は請求書の状態変更を記録する不変の監査レコード。
// 状態更新と同じトランザクションで追記される。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// TransitionData は状態遷移イベントのデータ。
type TransitionData struct {
	// From は遷移元の状態。
	From string `json:"from"`
	// To は遷移先の状態。
	To string `json:"to"`
}
