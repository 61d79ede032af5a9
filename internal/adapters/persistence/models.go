package persistence

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderJournalModel represents the order_journal table.
// One row per live buy order, keyed by the marketplace order id.
type OrderJournalModel struct {
	OrderID     string          `gorm:"column:order_id;primaryKey;not null"`
	RunID       string          `gorm:"column:run_id;not null;index"`
	ItemName    string          `gorm:"column:item_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:varchar(32);not null"`
	Status      string          `gorm:"column:status;not null;default:'OPEN';index"`
	PlacedAt    time.Time       `gorm:"column:placed_at;not null"`
	CancelledAt *time.Time      `gorm:"column:cancelled_at"`
	LastError   string          `gorm:"column:last_error;type:text"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (OrderJournalModel) TableName() string {
	return "order_journal"
}

// BotLogModel represents the bot_logs table
type BotLogModel struct {
	ID        int            `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string         `gorm:"column:run_id;not null;index"`
	Timestamp time.Time      `gorm:"column:timestamp;not null;index"`
	Level     string         `gorm:"column:level;not null;default:'INFO'"`
	Message   string         `gorm:"column:message;type:text;not null"`
	Metadata  datatypes.JSON `gorm:"column:metadata"`
}

func (BotLogModel) TableName() string {
	return "bot_logs"
}

// AllModels lists every table the bot owns, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&OrderJournalModel{},
		&BotLogModel{},
	}
}
