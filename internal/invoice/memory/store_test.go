package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/reminder/internal/invoice"
)

func TestStore_FindByStateIsSnapshot(t *testing.T) {
	t.Parallel()
	s := New(
		invoice.Invoice{ID: "2", State: invoice.StateFirstReminder},
		invoice.Invoice{ID: "1", State: invoice.StateFirstReminder},
		invoice.Invoice{ID: "3", State: invoice.StateDeactivated},
	)

	got, err := s.FindByState(t.Context(), invoice.StateFirstReminder)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	res, err := s.UpdateStateIfCurrent(t.Context(), "1", invoice.StateFirstReminder, invoice.StateSecondReminder)
	require.NoError(t, err)
	assert.Equal(t, invoice.Updated, res)

	// 取得済みのスライスは後続の更新の影響を受けない
	assert.Equal(t, invoice.StateFirstReminder, got[0].State)
}

func TestStore_UpdateStateIfCurrent(t *testing.T) {
	t.Parallel()
	s := New(invoice.Invoice{ID: "1", State: invoice.StateSecondReminder})

	res, err := s.UpdateStateIfCurrent(t.Context(), "1", invoice.StateFirstReminder, invoice.StateSecondReminder)
	require.NoError(t, err)
	assert.Equal(t, invoice.Conflict, res)

	res, err = s.UpdateStateIfCurrent(t.Context(), "nope", invoice.StateFirstReminder, invoice.StateSecondReminder)
	require.NoError(t, err)
	assert.Equal(t, invoice.NotFound, res)

	res, err = s.UpdateStateIfCurrent(t.Context(), "1", invoice.StateSecondReminder, invoice.StateDeactivated)
	require.NoError(t, err)
	assert.Equal(t, invoice.Updated, res)

	events, err := s.Events(t.Context(), "1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()
	s := New(invoice.Invoice{ID: "1", State: invoice.StateFirstReminder})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := s.FindByState(ctx, invoice.StateFirstReminder)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.UpdateStateIfCurrent(ctx, "1", invoice.StateFirstReminder, invoice.StateSecondReminder)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Insert(t *testing.T) {
	t.Parallel()
	s := New()

	require.NoError(t, s.Insert(t.Context(), invoice.Invoice{ID: "1", State: invoice.StateFirstReminder}))
	assert.Error(t, s.Insert(t.Context(), invoice.Invoice{ID: "1", State: invoice.StateFirstReminder}))
	assert.ErrorIs(t, s.Insert(t.Context(), invoice.Invoice{ID: "2", State: "x"}), invoice.ErrUnknownState)

	_, err := s.Get(t.Context(), "2")
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}
