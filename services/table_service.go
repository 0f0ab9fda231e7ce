package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/utils"
)

type OpenTableInput struct {
	Number    int    `json:"number"`
	PartySize *int   `json:"party_size"`
	Note      string `json:"note"`
}

func (in OpenTableInput) Validate() error {
	if in.Number <= 0 {
		return models.Invalid("number", "table number must be greater than zero")
	}
	if in.PartySize != nil && *in.PartySize <= 0 {
		return models.Invalid("party_size", "party size must be greater than zero")
	}
	return nil
}

// PurgeFilter narrows which closed tables PurgeHistory removes. A nil
// ClosedBefore removes every closed table.
type PurgeFilter struct {
	ClosedBefore *time.Time
}

type TableService struct {
	db     *gorm.DB
	notify live.Notifier
	now    func() time.Time
}

func NewTableService(db *gorm.DB, notify live.Notifier) *TableService {
	return &TableService{db: db, notify: notify, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (s *TableService) Open(ctx context.Context, in OpenTableInput) (*models.Table, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	table := models.Table{
		ID:        uuid.NewString(),
		Number:    in.Number,
		PartySize: in.PartySize,
		Note:      strings.TrimSpace(in.Note),
		OpenedAt:  s.now(),
		Status:    models.TableOpen,
	}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		utils.ErrorLogger.Errorf("Failed to open table %d: %v", in.Number, err)
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": table.ID,
		"number":   table.Number,
	}).Info("Table opened")
	live.PublishAll(s.notify, live.EventTablesChanged)
	return &table, nil
}

func (s *TableService) Get(ctx context.Context, id string) (*models.Table, error) {
	return findTable(s.db.WithContext(ctx), id)
}

// ListOpen returns every table that is not closed, most recently opened first.
func (s *TableService) ListOpen(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.WithContext(ctx).
		Where("status <> ?", models.TableClosed).
		Order("opened_at DESC").
		Find(&tables).Error
	return tables, err
}

// PendingCounts counts, per table, the outstanding items: neither delivered
// nor cancelled.
func (s *TableService) PendingCounts(ctx context.Context, tableIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(tableIDs))
	if len(tableIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TableID string
		Total   int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("table_id, COUNT(*) AS total").
		Where("table_id IN ? AND delivered = ? AND cancelled = ?", tableIDs, false, false).
		Group("table_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.TableID] = r.Total
	}
	return counts, nil
}

// ListClosedOn returns the tables closed during the calendar day of day, in
// day's location, most recently closed first.
func (s *TableService) ListClosedOn(ctx context.Context, day time.Time) ([]models.Table, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var tables []models.Table
	err := s.db.WithContext(ctx).
		Where("status = ? AND closed_at >= ? AND closed_at < ?", models.TableClosed, start.UTC(), end.UTC()).
		Order("closed_at DESC").
		Find(&tables).Error
	return tables, err
}

// RecomputeLaunchStatus derives the launch status from the table's items.
func (s *TableService) RecomputeLaunchStatus(ctx context.Context, tableID string) (models.LaunchStatus, error) {
	var status models.LaunchStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTable(tx, tableID); err != nil {
			return err
		}
		var err error
		status, err = recomputeLaunchStatus(tx, tableID)
		return err
	})
	if err != nil {
		return models.LaunchUnset, err
	}
	live.PublishAll(s.notify, live.EventTablesChanged)
	return status, nil
}

// ForceLaunchStatus imposes a launch status on the table and makes its items
// agree with it. Launched marks every non-cancelled item launched; awaiting
// launch clears the flag on every item.
func (s *TableService) ForceLaunchStatus(ctx context.Context, tableID string, status models.LaunchStatus) (*models.Table, error) {
	if !status.Valid() {
		return nil, models.Invalid("launch_status", "must be %q or %q", models.Launched, models.AwaitingLaunch)
	}

	var table *models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if table, err = findTable(tx, tableID); err != nil {
			return err
		}
		if table.IsClosed() {
			return ErrInvalidTransition
		}
		if err := tx.Model(table).Update("launch_status", status).Error; err != nil {
			return err
		}

		items := tx.Model(&models.OrderItem{}).Where("table_id = ?", tableID)
		if status == models.Launched {
			items = items.Where("cancelled = ?", false)
		}
		if err := items.Update("launched", status == models.Launched).Error; err != nil {
			return err
		}
		table, err = findTable(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id":      tableID,
		"launch_status": status,
	}).Info("Launch status forced")
	live.PublishAll(s.notify, live.EventTablesChanged, live.EventItemsChanged)
	return table, nil
}

func (s *TableService) MarkFinalizing(ctx context.Context, id string) (*models.Table, error) {
	table, err := s.transition(ctx, id, map[string]interface{}{
		"status": models.TableFinalizing,
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.WithField("table_id", id).Info("Table finalizing")
	return table, nil
}

// Close moves any non-closed table to closed and stamps ClosedAt.
func (s *TableService) Close(ctx context.Context, id, paymentNote string) (*models.Table, error) {
	now := s.now()
	table, err := s.transition(ctx, id, map[string]interface{}{
		"status":       models.TableClosed,
		"closed_at":    now,
		"payment_note": strings.TrimSpace(paymentNote),
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": id,
		"number":   table.Number,
	}).Info("Table closed")
	return table, nil
}

func (s *TableService) transition(ctx context.Context, id string, updates map[string]interface{}) (*models.Table, error) {
	var table *models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if table, err = findTable(tx, id); err != nil {
			return err
		}
		if table.IsClosed() {
			return ErrInvalidTransition
		}
		if err := tx.Model(table).Updates(updates).Error; err != nil {
			return err
		}
		table, err = findTable(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	live.PublishAll(s.notify, live.EventTablesChanged)
	return table, nil
}

// PurgeHistory deletes closed tables matching filter together with their
// items and returns how many tables were removed.
func (s *TableService) PurgeHistory(ctx context.Context, filter PurgeFilter) (int, error) {
	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Table{}).Where("status = ?", models.TableClosed)
		if filter.ClosedBefore != nil {
			q = q.Where("closed_at < ?", filter.ClosedBefore.UTC())
		}
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("table_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Table{}).Error
	})
	if err != nil {
		utils.ErrorLogger.Errorf("Failed to purge history: %v", err)
		return 0, err
	}

	if len(ids) > 0 {
		utils.InfoLogger.WithField("tables", len(ids)).Info("History purged")
		live.PublishAll(s.notify, live.EventTablesChanged, live.EventItemsChanged)
	}
	return len(ids), nil
}
