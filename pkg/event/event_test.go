package event

import (
	"testing"
	"time"
)

// TestTypeConstants はType定数の値を検証する。
func TestTypeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  Type
		want string
	}{
		{
			name: "TypeReminderAdvancedの値が正しいこと",
			got:  TypeReminderAdvanced,
			want: "ReminderAdvanced",
		},
		{
			name: "TypeInvoiceDeactivatedの値が正しいこと",
			got:  TypeInvoiceDeactivated,
			want: "InvoiceDeactivated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if string(tt.got) != tt.want {
				t.Errorf("Type = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// TestNewTransition はNewTransition関数を検証する。
func TestNewTransition(t *testing.T) {
	t.Parallel()

	t.Run("終端でない遷移はReminderAdvancedになること", func(t *testing.T) {
		t.Parallel()

		before := time.Now().UTC()
		ev, err := NewTransition("inv-1", "primerrecordatorio", "segundorecordatorio", false)
		after := time.Now().UTC()
		if err != nil {
			t.Fatalf("NewTransition()でエラーが発生: %v", err)
		}

		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.AggregateID != "inv-1" {
			t.Errorf("AggregateID = %q, want %q", ev.AggregateID, "inv-1")
		}
		if ev.AggregateType != AggregateTypeInvoice {
			t.Errorf("AggregateType = %q, want %q", ev.AggregateType, AggregateTypeInvoice)
		}
		if ev.EventType != TypeReminderAdvanced {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeReminderAdvanced)
		}
		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}

		data, err := DecodeData[TransitionData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if data.From != "primerrecordatorio" || data.To != "segundorecordatorio" {
			t.Errorf("data = %+v", data)
		}
	})

	t.Run("終端への遷移はInvoiceDeactivatedになること", func(t *testing.T) {
		t.Parallel()

		ev, err := NewTransition("inv-2", "segundorecordatorio", "desactivado", true)
		if err != nil {
			t.Fatalf("NewTransition()でエラーが発生: %v", err)
		}
		if ev.EventType != TypeInvoiceDeactivated {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeInvoiceDeactivated)
		}
	})

	t.Run("連続して生成したイベントのIDが異なること", func(t *testing.T) {
		t.Parallel()

		ev1, _ := NewTransition("inv-1", "a", "b", false)
		ev2, _ := NewTransition("inv-1", "a", "b", false)
		if ev1.ID == ev2.ID {
			t.Errorf("IDが重複: %q", ev1.ID)
		}
	})
}

// TestDecodeData_InvalidJSON は不正なJSONのデコードがエラーになることを検証する。
func TestDecodeData_InvalidJSON(t *testing.T) {
	t.Parallel()

	ev := &Event{Data: []byte(`{invalid`)}
	if _, err := DecodeData[TransitionData](ev); err == nil {
		t.Fatal("DecodeData()がエラーを返すべきだが、nilが返った")
	}
}
