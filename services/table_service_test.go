package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
)

func TestOpenTable(t *testing.T) {
	f := newFixture(t)
	size := 4

	table, err := f.tables.Open(testCtx, OpenTableInput{Number: 7, PartySize: &size, Note: "  varanda "})
	require.NoError(t, err)
	assert.NotEmpty(t, table.ID)
	assert.Equal(t, models.TableOpen, table.Status)
	assert.Equal(t, models.LaunchUnset, table.LaunchStatus)
	assert.Equal(t, "varanda", table.Note)
	assert.Nil(t, table.ClosedAt)
	assert.Equal(t, []string{live.EventTablesChanged}, f.events.Events())

	stored, err := f.tables.Get(testCtx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Number)
	require.NotNil(t, stored.PartySize)
	assert.Equal(t, 4, *stored.PartySize)
}

func TestOpenTableValidation(t *testing.T) {
	f := newFixture(t)
	zero := 0

	tests := []struct {
		name  string
		in    OpenTableInput
		field string
	}{
		{"missing number", OpenTableInput{}, "number"},
		{"negative number", OpenTableInput{Number: -2}, "number"},
		{"empty party", OpenTableInput{Number: 3, PartySize: &zero}, "party_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tables.Open(testCtx, tt.in)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Empty(t, f.events.Events())
}

func TestGetMissingTable(t *testing.T) {
	f := newFixture(t)
	_, err := f.tables.Get(testCtx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOpenNewestFirst(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	f.at(base)
	first := f.openTable(t, 1)
	f.at(base.Add(10 * time.Minute))
	second := f.openTable(t, 2)
	f.at(base.Add(20 * time.Minute))
	third := f.openTable(t, 3)

	_, err := f.tables.Close(testCtx, second.ID, "")
	require.NoError(t, err)

	open, err := f.tables.ListOpen(testCtx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, third.ID, open[0].ID)
	assert.Equal(t, first.ID, open[1].ID)
}

func TestPendingCounts(t *testing.T) {
	f := newFixture(t)
	a := f.openTable(t, 1)
	b := f.openTable(t, 2)
	c := f.openTable(t, 3)

	f.addItems(t, a.ID,
		models.OrderItem{Description: "Agua"},
		models.OrderItem{Description: "Pastel", Delivered: true},
		models.OrderItem{Description: "Soda", Cancelled: true},
		models.OrderItem{Description: "Bolinho", Launched: true},
	)
	f.addItems(t, b.ID, models.OrderItem{Description: "Cerveja", Delivered: true})

	counts, err := f.tables.PendingCounts(testCtx, []string{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Zero(t, counts[b.ID])
	assert.Zero(t, counts[c.ID])

	empty, err := f.tables.PendingCounts(testCtx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCloseTable(t *testing.T) {
	f := newFixture(t)
	closedAt := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)
	table := f.openTable(t, 7)

	f.at(closedAt)
	closed, err := f.tables.Close(testCtx, table.ID, " pix ")
	require.NoError(t, err)
	assert.Equal(t, models.TableClosed, closed.Status)
	assert.Equal(t, "pix", closed.PaymentNote)
	require.NotNil(t, closed.ClosedAt)
	assert.True(t, closedAt.Equal(*closed.ClosedAt))

	open, err := f.tables.ListOpen(testCtx)
	require.NoError(t, err)
	assert.Empty(t, open)

	sameDay, err := f.tables.ListClosedOn(testCtx, time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sameDay, 1)
	assert.Equal(t, table.ID, sameDay[0].ID)

	nextDay, err := f.tables.ListClosedOn(testCtx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, nextDay)
}

func TestListClosedOnUsesTheDayLocation(t *testing.T) {
	f := newFixture(t)
	brt := time.FixedZone("BRT", -3*60*60)
	table := f.openTable(t, 9)

	// 01:30 UTC on the 15th is still the evening of the 14th in BRT.
	f.at(time.Date(2026, 3, 15, 1, 30, 0, 0, time.UTC))
	_, err := f.tables.Close(testCtx, table.ID, "")
	require.NoError(t, err)

	local, err := f.tables.ListClosedOn(testCtx, time.Date(2026, 3, 14, 0, 0, 0, 0, brt))
	require.NoError(t, err)
	assert.Len(t, local, 1)

	utc, err := f.tables.ListClosedOn(testCtx, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, utc)
}

func TestClosedIsTerminal(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, 4)

	finalizing, err := f.tables.MarkFinalizing(testCtx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableFinalizing, finalizing.Status)

	// finalizing again is allowed
	_, err = f.tables.MarkFinalizing(testCtx, table.ID)
	require.NoError(t, err)

	_, err = f.tables.Close(testCtx, table.ID, "")
	require.NoError(t, err)

	_, err = f.tables.MarkFinalizing(testCtx, table.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.tables.Close(testCtx, table.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.tables.ForceLaunchStatus(testCtx, table.ID, models.Launched)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.tables.Close(testCtx, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForceLaunchStatusCascadesToItems(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, 5)
	f.addItems(t, table.ID,
		models.OrderItem{Description: "Agua"},
		models.OrderItem{Description: "Pastel", Launched: true},
		models.OrderItem{Description: "Soda", Cancelled: true},
	)

	forced, err := f.tables.ForceLaunchStatus(testCtx, table.ID, models.Launched)
	require.NoError(t, err)
	assert.Equal(t, models.Launched, forced.LaunchStatus)

	items, err := f.items.ListForTable(testCtx, table.ID)
	require.NoError(t, err)
	for _, it := range items {
		assert.Equal(t, !it.Cancelled, it.Launched, it.Description)
	}

	_, err = f.tables.ForceLaunchStatus(testCtx, table.ID, models.AwaitingLaunch)
	require.NoError(t, err)
	items, err = f.items.ListForTable(testCtx, table.ID)
	require.NoError(t, err)
	for _, it := range items {
		assert.False(t, it.Launched, it.Description)
	}

	stored, err := f.tables.Get(testCtx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwaitingLaunch, stored.LaunchStatus)
}

func TestForceLaunchStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, 5)

	_, err := f.tables.ForceLaunchStatus(testCtx, table.ID, models.LaunchStatus("kitchen"))
	assert.True(t, IsValidation(err))
	_, err = f.tables.ForceLaunchStatus(testCtx, table.ID, models.LaunchUnset)
	assert.True(t, IsValidation(err))
}

func TestRecomputeLaunchStatus(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, 6)

	status, err := f.tables.RecomputeLaunchStatus(testCtx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Launched, status, "a table without pending items counts as launched")

	f.addItems(t, table.ID, models.OrderItem{Description: "Agua"})
	status, err = f.tables.RecomputeLaunchStatus(testCtx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwaitingLaunch, status)

	_, err = f.tables.RecomputeLaunchStatus(testCtx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeHistory(t *testing.T) {
	f := newFixture(t)
	old := f.openTable(t, 1)
	recent := f.openTable(t, 2)
	open := f.openTable(t, 3)
	f.addItems(t, old.ID, models.OrderItem{Description: "Agua"})
	f.addItems(t, recent.ID, models.OrderItem{Description: "Soda"})
	f.addItems(t, open.ID, models.OrderItem{Description: "Pastel"})

	f.at(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC))
	_, err := f.tables.Close(testCtx, old.ID, "")
	require.NoError(t, err)
	f.at(time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC))
	_, err = f.tables.Close(testCtx, recent.ID, "")
	require.NoError(t, err)

	cutoff := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	removed, err := f.tables.PurgeHistory(testCtx, PurgeFilter{ClosedBefore: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.tables.Get(testCtx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var orphans int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("table_id = ?", old.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	removed, err = f.tables.PurgeHistory(testCtx, PurgeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Table{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining, "open tables are never purged")
	items, err := f.items.ListForTable(testCtx, open.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	f.events.Reset()
	removed, err = f.tables.PurgeHistory(testCtx, PurgeFilter{})
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, f.events.Events())
}
