package models

import "time"

const (
	MinDisplayPriority = 0
	MaxDisplayPriority = 5

	// DefaultEstimatedPrepMinutes dipakai saat estimasi tidak diisi.
	DefaultEstimatedPrepMinutes = 30
)

// KitchenStatusFlow: transisi per-station, maju saja (tidak pernah mundur).
var KitchenStatusFlow = map[string][]string{
	OrderPending:   {OrderConfirmed, OrderPreparing, OrderCancelled},
	OrderConfirmed: {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderServed, OrderCompleted, OrderCancelled},
	OrderServed:    {OrderCompleted},
	OrderCompleted: {},
	OrderCancelled: {},
}

// CanTransitionKitchen -> cek transition table kitchen display
func CanTransitionKitchen(from, to string) bool {
	for _, next := range KitchenStatusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalKitchenStatus -> status station tanpa transisi keluar
func IsTerminalKitchenStatus(s string) bool {
	return len(KitchenStatusFlow[s]) == 0
}

// KitchenDisplay adalah representasi per-station dari satu order di dapur.
// Satu order bisa punya beberapa row (grill, salad, dst), satu per station.
type KitchenDisplay struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TenantID      uint       `gorm:"index;not null" json:"tenant_id"`
	OrderID       uint       `gorm:"index;not null" json:"order_id"`
	Order         Order      `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	StationName   string     `gorm:"type:varchar(50);not null" json:"station_name"`
	Priority      int        `gorm:"not null;default:0" json:"priority"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	EstimatedTime int        `gorm:"not null;default:0" json:"estimated_time"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DisplayedAt   time.Time  `gorm:"not null" json:"displayed_at"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
