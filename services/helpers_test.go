package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/database"
	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
)

var testCtx = context.Background()

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(msg live.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, msg.Event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	db      *gorm.DB
	events  *recorder
	tables  *TableService
	items   *ItemService
	orders  *OrderService
	catalog *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)

	rec := &recorder{}
	return &fixture{
		db:      db,
		events:  rec,
		tables:  NewTableService(db, rec),
		items:   NewItemService(db, rec),
		orders:  NewOrderService(db, rec),
		catalog: NewCatalogService(db, rec),
	}
}

// at pins the clock of every service.
func (f *fixture) at(now time.Time) {
	clock := func() time.Time { return now.UTC() }
	f.tables.now = clock
	f.orders.now = clock
	f.catalog.now = clock
}

func (f *fixture) openTable(t *testing.T, number int) *models.Table {
	t.Helper()
	table, err := f.tables.Open(testCtx, OpenTableInput{Number: number})
	require.NoError(t, err)
	return table
}

// addItems stores items directly, bypassing the commit path.
func (f *fixture) addItems(t *testing.T, tableID string, items ...models.OrderItem) []models.OrderItem {
	t.Helper()
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	for i := range items {
		items[i].ID = tableID + "-" + items[i].Description
		items[i].TableID = tableID
		if items[i].Quantity == 0 {
			items[i].Quantity = 1
		}
		items[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	require.NoError(t, f.db.Create(&items).Error)
	return items
}

func (f *fixture) product(t *testing.T, in ProductInput) *models.Product {
	t.Helper()
	p, err := f.catalog.Create(testCtx, in)
	require.NoError(t, err)
	return p
}
