package models

import (
	"time"
)

// OrderItem is one line of a table's order. It carries its own description
// and does not reference the product it was built from.
type OrderItem struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TableID     string    `gorm:"type:varchar(36);not null;index:idx_items_table_created,priority:1" json:"table_id"`
	Table       *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Note        string    `gorm:"type:text" json:"note"`
	Delivered   bool      `gorm:"not null;default:false" json:"delivered"`
	Cancelled   bool      `gorm:"not null;default:false" json:"cancelled"`
	Launched    bool      `gorm:"not null;default:false;index" json:"launched"`
	CreatedAt   time.Time `gorm:"not null;index:idx_items_table_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Outstanding reports whether the item is still owed to the table.
func (i *OrderItem) Outstanding() bool {
	return !i.Cancelled && !i.Delivered
}
