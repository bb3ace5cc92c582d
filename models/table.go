package models

import "time"

// Status meja
const (
	TableAvailable  = "available"
	TableOccupied   = "occupied"
	TableReserved   = "reserved"
	TableCleaning   = "cleaning"
	TableOutOfOrder = "out_of_order"

	// TableDeleted hanya dipakai sebagai pseudo-status untuk broadcast dan
	// status log saat meja di-soft-delete, tidak pernah disimpan di kolom status.
	TableDeleted = "deleted"
)

const (
	MinTableCapacity = 1
	MaxTableCapacity = 20
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"index;not null" json:"tenant_id"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Name        string    `gorm:"type:varchar(100)" json:"name"`
	Capacity    int       `gorm:"not null;default:4" json:"capacity"`
	Section     string    `gorm:"type:varchar(50)" json:"section"`
	Floor       int       `gorm:"not null;default:1" json:"floor"`
	PosX        *float64  `json:"pos_x,omitempty"`
	PosY        *float64  `json:"pos_y,omitempty"`
	Status      string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// ValidTableStatus -> cek apakah string status dikenal
func ValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning, TableOutOfOrder:
		return true
	}
	return false
}
