package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/utils"
)

type EditItemInput struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note"`
}

func (in *EditItemInput) normalize() error {
	in.Description = strings.TrimSpace(in.Description)
	in.Note = strings.TrimSpace(in.Note)
	if in.Description == "" {
		return models.Invalid("description", "description is required")
	}
	if in.Quantity < 1 {
		return models.Invalid("quantity", "quantity must be at least 1")
	}
	return nil
}

type ItemService struct {
	db     *gorm.DB
	notify live.Notifier
}

func NewItemService(db *gorm.DB, notify live.Notifier) *ItemService {
	return &ItemService{db: db, notify: notify}
}

// ListForTable returns a table's items in the order they were committed.
func (s *ItemService) ListForTable(ctx context.Context, tableID string) ([]models.OrderItem, error) {
	db := s.db.WithContext(ctx)
	if _, err := findTable(db, tableID); err != nil {
		return nil, err
	}

	var items []models.OrderItem
	err := db.Where("table_id = ?", tableID).
		Order("created_at ASC").
		Order("description ASC").
		Find(&items).Error
	return items, err
}

func (s *ItemService) Get(ctx context.Context, id string) (*models.OrderItem, error) {
	return findItem(s.db.WithContext(ctx), id)
}

// ToggleDelivered flips the delivered flag. Delivery has no bearing on the
// launch status.
func (s *ItemService) ToggleDelivered(ctx context.Context, id string) (*models.OrderItem, error) {
	return s.toggle(ctx, id, "delivered", false)
}

func (s *ItemService) ToggleLaunched(ctx context.Context, id string) (*models.OrderItem, error) {
	return s.toggle(ctx, id, "launched", true)
}

// ToggleCancelled flips the cancelled flag. Delivered and launched are kept
// so that un-cancelling restores the item as it was.
func (s *ItemService) ToggleCancelled(ctx context.Context, id string) (*models.OrderItem, error) {
	return s.toggle(ctx, id, "cancelled", true)
}

func (s *ItemService) toggle(ctx context.Context, id, column string, recompute bool) (*models.OrderItem, error) {
	var item *models.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if item, err = findItem(tx, id); err != nil {
			return err
		}

		var value bool
		switch column {
		case "delivered":
			item.Delivered = !item.Delivered
			value = item.Delivered
		case "launched":
			item.Launched = !item.Launched
			value = item.Launched
		case "cancelled":
			item.Cancelled = !item.Cancelled
			value = item.Cancelled
		}
		if err := tx.Model(item).Update(column, value).Error; err != nil {
			return err
		}
		if !recompute {
			return nil
		}
		_, err = recomputeLaunchStatus(tx, item.TableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"item_id":  id,
		"table_id": item.TableID,
		"field":    column,
	}).Debug("Item toggled")
	if recompute {
		live.PublishAll(s.notify, live.EventItemsChanged, live.EventTablesChanged)
	} else {
		live.PublishAll(s.notify, live.EventItemsChanged)
	}
	return item, nil
}

// Edit rewrites an item's description, quantity and note. An edited item
// has to be announced again, so it goes back to not launched.
func (s *ItemService) Edit(ctx context.Context, id string, in EditItemInput) (*models.OrderItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var item *models.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if item, err = findItem(tx, id); err != nil {
			return err
		}
		if err := tx.Model(item).Updates(map[string]interface{}{
			"description": in.Description,
			"quantity":    in.Quantity,
			"note":        in.Note,
			"launched":    false,
		}).Error; err != nil {
			return err
		}
		if _, err := recomputeLaunchStatus(tx, item.TableID); err != nil {
			return err
		}
		item, err = findItem(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"item_id":  id,
		"table_id": item.TableID,
	}).Info("Item edited")
	live.PublishAll(s.notify, live.EventItemsChanged, live.EventTablesChanged)
	return item, nil
}
