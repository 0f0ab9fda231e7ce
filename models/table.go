package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TableStatus string

const (
	TableOpen       TableStatus = "open"
	TableInProgress TableStatus = "in_progress"
	TableFinalizing TableStatus = "finalizing"
	TableClosed     TableStatus = "closed"
)

// LaunchStatus tells whether the kitchen/bar has been told about every
// pending item of a table. The zero value means the table never had an order.
type LaunchStatus string

const (
	LaunchUnset    LaunchStatus = ""
	Launched       LaunchStatus = "launched"
	AwaitingLaunch LaunchStatus = "awaiting_launch"
)

func (s LaunchStatus) Valid() bool {
	return s == Launched || s == AwaitingLaunch
}

type Table struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Number         int             `gorm:"not null;index" json:"number"`
	PartySize      *int            `json:"party_size,omitempty"`
	Note           string          `gorm:"type:text" json:"note"`
	OpenedAt       time.Time       `gorm:"not null;index" json:"opened_at"`
	ClosedAt       *time.Time      `gorm:"index" json:"closed_at,omitempty"`
	Status         TableStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	LaunchStatus   LaunchStatus    `gorm:"type:varchar(20);index" json:"launch_status"`
	PaymentNote    string          `gorm:"type:text" json:"payment_note"`
	EstimatedTotal decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"estimated_total"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (t *Table) IsClosed() bool {
	return t.Status == TableClosed
}
