package models

import "time"

// TableStatusLog adalah audit trail perubahan status meja. Append-only:
// tidak pernah di-update atau dihapus.
type TableStatusLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"index;not null" json:"tenant_id"`
	TableID   uint      `gorm:"index;not null" json:"table_id"`
	OldStatus string    `gorm:"type:varchar(20)" json:"old_status"`
	NewStatus string    `gorm:"type:varchar(20);not null" json:"new_status"`
	Reason    string    `gorm:"type:varchar(255)" json:"reason"`
	ChangedBy string    `gorm:"type:varchar(100);not null;default:'system'" json:"changed_by"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
