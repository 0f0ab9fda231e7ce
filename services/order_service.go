package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/cart"
	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/utils"
)

const commitBatchSize = 100

type OrderService struct {
	db     *gorm.DB
	notify live.Notifier
	now    func() time.Time
}

func NewOrderService(db *gorm.DB, notify live.Notifier) *OrderService {
	return &OrderService{db: db, notify: notify, now: utcNow}
}

// Commit turns cart lines into order items of the table in a single
// transaction. It also stamps the products as recently used, marks the table
// as awaiting launch and moves an open table to in progress. Either all of
// that is stored or none of it.
func (s *OrderService) Commit(ctx context.Context, tableID string, lines []cart.Line) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, models.Invalid("cart", "cart is empty")
	}

	now := s.now()
	items := make([]models.OrderItem, 0, len(lines))
	productIDs := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, models.Invalid("quantity", "line %s has no quantity", line.EncodedKey)
		}
		items = append(items, models.OrderItem{
			ID:          uuid.NewString(),
			TableID:     tableID,
			Description: line.Description(),
			Quantity:    line.Quantity,
			Note:        line.Note,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if !seen[line.Key.ProductID] {
			seen[line.Key.ProductID] = true
			productIDs = append(productIDs, line.Key.ProductID)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := findTable(tx, tableID)
		if err != nil {
			return err
		}
		if table.IsClosed() {
			return fmt.Errorf("table %d is closed: %w", table.Number, ErrInvalidTransition)
		}

		if err := tx.CreateInBatches(&items, commitBatchSize).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).
			Where("id IN ?", productIDs).
			Update("last_used_at", now).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"launch_status": models.AwaitingLaunch}
		if table.Status == models.TableOpen {
			updates["status"] = models.TableInProgress
		}
		return tx.Model(table).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		utils.ErrorLogger.WithField("table_id", tableID).Errorf("Order commit rolled back: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": tableID,
		"items":    len(items),
	}).Info("Order committed")
	live.PublishAll(s.notify, live.EventItemsChanged, live.EventTablesChanged, live.EventProductsChanged)
	return items, nil
}
