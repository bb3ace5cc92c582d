package models

import "time"

// Status order / kitchen display. Kitchen display memakai subset enum yang
// sama supaya status station bisa dipromosikan langsung ke status order.
const (
	OrderPending       = "pending"
	OrderConfirmed     = "confirmed"
	OrderPreparing     = "preparing"
	OrderReady         = "ready"
	OrderServed        = "served"
	OrderCompleted     = "completed"
	OrderCancelled     = "cancelled"
	OrderRefunded      = "refunded"
	OrderModified      = "modified"
	OrderPartiallyPaid = "partially_paid"
)

// OrderStatusFlow adalah transition table order: setiap status (termasuk
// terminal) punya entry eksplisit. Transisi di luar daftar ini ditolak.
var OrderStatusFlow = map[string][]string{
	OrderPending:       {OrderConfirmed, OrderCancelled},
	OrderConfirmed:     {OrderPreparing, OrderModified, OrderCancelled},
	OrderPreparing:     {OrderReady, OrderModified, OrderCancelled},
	OrderReady:         {OrderServed, OrderCompleted, OrderCancelled},
	OrderServed:        {OrderCompleted, OrderPartiallyPaid, OrderRefunded},
	OrderModified:      {OrderConfirmed, OrderPreparing, OrderCancelled},
	OrderPartiallyPaid: {OrderConfirmed, OrderPreparing, OrderCompleted, OrderRefunded},
	OrderCompleted:     {},
	OrderCancelled:     {},
	OrderRefunded:      {},
}

// OrderActiveStatuses: order yang masih "hidup" dan boleh menduduki meja.
var OrderActiveStatuses = []string{
	OrderPending, OrderConfirmed, OrderPreparing, OrderReady,
	OrderServed, OrderModified, OrderPartiallyPaid,
}

// CanTransitionOrder -> cek transition table order
func CanTransitionOrder(from, to string) bool {
	for _, next := range OrderStatusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus -> status tanpa transisi keluar
func IsTerminalOrderStatus(s string) bool {
	return len(OrderStatusFlow[s]) == 0
}

type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"index;not null" json:"tenant_id"`
	TableID     uint      `gorm:"index;not null" json:"table_id"`
	Table       Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
