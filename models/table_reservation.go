package models

import "time"

// Status reservasi
const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
	ReservationNoShow    = "no_show"
)

// ReservationStatusFlow memetakan setiap status reservasi ke daftar status
// tujuan yang sah. Status terminal sengaja tetap punya entry (kosong) supaya
// penambahan status baru tidak lolos validasi secara diam-diam.
var ReservationStatusFlow = map[string][]string{
	ReservationConfirmed: {ReservationCancelled, ReservationCompleted, ReservationNoShow},
	ReservationCancelled: {},
	ReservationCompleted: {},
	ReservationNoShow:    {},
}

type TableReservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TenantID        uint      `gorm:"index;not null" json:"tenant_id"`
	TableID         uint      `gorm:"index;not null" json:"table_id"`
	Table           Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerName    string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerPhone   string    `gorm:"type:varchar(30)" json:"customer_phone"`
	CustomerID      *uint     `gorm:"index" json:"customer_id,omitempty"`
	GuestCount      int       `gorm:"not null" json:"guest_count"`
	ReservedAt      time.Time `gorm:"not null;index" json:"reserved_at"`
	DurationMinutes int       `gorm:"not null;default:120" json:"duration_minutes"`
	Status          string    `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedBy       string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// EffectiveEnd -> akhir window reservasi (start + durasi)
func (r *TableReservation) EffectiveEnd() time.Time {
	return r.ReservedAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
}
