package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"resto-ops/cache"
	"resto-ops/kds"
	"resto-ops/models"
	"resto-ops/utils"
)

// TableService memegang state machine meja: CRUD, transisi status dengan
// audit log, soft delete, dan statistik dashboard. Semua mutasi berjalan
// dalam satu transaksi (row + status log), lalu invalidasi cache + broadcast.
type TableService struct {
	DB     *gorm.DB
	Cache  cache.Store
	Events kds.Publisher
}

func NewTableService(db *gorm.DB, store cache.Store, events kds.Publisher) *TableService {
	return &TableService{DB: db, Cache: store, Events: events}
}

type CreateTableInput struct {
	TableNumber string   `json:"table_number"`
	Name        string   `json:"name"`
	Capacity    int      `json:"capacity"`
	Section     string   `json:"section"`
	Floor       int      `json:"floor"`
	PosX        *float64 `json:"pos_x"`
	PosY        *float64 `json:"pos_y"`
}

type UpdateTableInput struct {
	TableNumber *string  `json:"table_number"`
	Name        *string  `json:"name"`
	Capacity    *int     `json:"capacity"`
	Section     *string  `json:"section"`
	Floor       *int     `json:"floor"`
	PosX        *float64 `json:"pos_x"`
	PosY        *float64 `json:"pos_y"`
}

type TableFilter struct {
	Status          string
	Section         string
	Floor           int
	IncludeInactive bool
}

// create adalah inti pembuatan meja tanpa hook post-commit, dipakai juga oleh
// bulk executor supaya invalidasi + broadcast cukup sekali per batch.
func (ts *TableService) create(tenantID uint, input CreateTableInput) (*models.Table, error) {
	if input.TableNumber == "" {
		return nil, utils.NewValidationError("table number is required")
	}
	if input.Capacity == 0 {
		input.Capacity = 4
	}
	if input.Capacity < models.MinTableCapacity || input.Capacity > models.MaxTableCapacity {
		return nil, utils.NewValidationError("table capacity must be between %d and %d",
			models.MinTableCapacity, models.MaxTableCapacity)
	}
	if input.Floor == 0 {
		input.Floor = 1
	}

	// Nomor meja unik di antara meja AKTIF tenant, bukan unik global:
	// nomor milik meja yang sudah di-soft-delete boleh dipakai lagi.
	var count int64
	if err := ts.DB.Model(&models.Table{}).
		Where("tenant_id = ? AND table_number = ? AND active = ?", tenantID, input.TableNumber, true).
		Count(&count).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	if count > 0 {
		return nil, utils.NewConflictError("Table number already exists")
	}

	table := models.Table{
		TenantID:    tenantID,
		TableNumber: input.TableNumber,
		Name:        input.Name,
		Capacity:    input.Capacity,
		Section:     input.Section,
		Floor:       input.Floor,
		PosX:        input.PosX,
		PosY:        input.PosY,
		Status:      models.TableAvailable,
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		log := models.TableStatusLog{
			TenantID:  tenantID,
			TableID:   table.ID,
			OldStatus: "",
			NewStatus: models.TableAvailable,
			Reason:    "table created",
			ChangedBy: "system",
		}
		return tx.Create(&log).Error
	})
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &table, nil
}

// CreateTable -> buat meja baru + invalidasi cache + broadcast
func (ts *TableService) CreateTable(tenantID uint, input CreateTableInput) (*models.Table, error) {
	table, err := ts.create(tenantID, input)
	if err != nil {
		return nil, err
	}

	notifyChange(ts.Cache, ts.Events, tenantID,
		[]string{tableKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventTableCreate,
		map[string]interface{}{"table": table, "stats": ts.statsPayload(tenantID)})

	utils.InfoLogger.Printf("New table created: %s (tenant=%d)", table.TableNumber, tenantID)
	return table, nil
}

// setStatus adalah inti transisi status meja: validasi, tulis row + audit log
// dalam satu transaksi. Tidak menjalankan hook post-commit.
func (ts *TableService) setStatus(tenantID, tableID uint, newStatus, actor, reason string) (*models.Table, error) {
	if !models.ValidTableStatus(newStatus) {
		return nil, utils.NewValidationError("invalid table status: %s", newStatus)
	}
	if actor == "" {
		actor = "system"
	}

	var table models.Table
	if err := ts.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", tableID)
		}
		return nil, utils.NewInternalError(err)
	}

	// Satu-satunya transisi yang dibatasi: masuk occupied tanpa order aktif.
	// Masuk available selalu boleh (dibutuhkan workflow create/complete order).
	if newStatus == models.TableOccupied {
		var activeOrders int64
		if err := ts.DB.Model(&models.Order{}).
			Where("tenant_id = ? AND table_id = ? AND status IN ?", tenantID, tableID, models.OrderActiveStatuses).
			Count(&activeOrders).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		if activeOrders == 0 {
			return nil, utils.NewConflictError("table %s has no active order", table.TableNumber)
		}
	}

	oldStatus := table.Status
	table.Status = newStatus

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&table).Error; err != nil {
			return err
		}
		log := models.TableStatusLog{
			TenantID:  tenantID,
			TableID:   table.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Reason:    reason,
			ChangedBy: actor,
		}
		return tx.Create(&log).Error
	})
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &table, nil
}

// UpdateTableStatus -> transisi status meja + log + broadcast
func (ts *TableService) UpdateTableStatus(tenantID, tableID uint, newStatus, actor, reason string) (*models.Table, error) {
	table, err := ts.setStatus(tenantID, tableID, newStatus, actor, reason)
	if err != nil {
		return nil, err
	}

	notifyChange(ts.Cache, ts.Events, tenantID,
		[]string{tableKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventTableUpdate,
		map[string]interface{}{"table": table, "stats": ts.statsPayload(tenantID)})

	utils.InfoLogger.Printf("Table %d status changed to %s by %s", table.ID, newStatus, actor)
	return table, nil
}

// MarkTableClean -> shortcut cleaner: cleaning => available
func (ts *TableService) MarkTableClean(tenantID, tableID uint, actor string) (*models.Table, error) {
	var table models.Table
	if err := ts.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", tableID)
		}
		return nil, utils.NewInternalError(err)
	}
	if table.Status != models.TableCleaning {
		return nil, utils.NewValidationError("table is not in cleaning status")
	}
	return ts.UpdateTableStatus(tenantID, tableID, models.TableAvailable, actor, "cleaned")
}

// UpdateTable -> edit atribut meja (bukan status)
func (ts *TableService) UpdateTable(tenantID, tableID uint, input UpdateTableInput) (*models.Table, error) {
	var table models.Table
	if err := ts.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", tableID)
		}
		return nil, utils.NewInternalError(err)
	}

	if input.TableNumber != nil && *input.TableNumber != table.TableNumber {
		if *input.TableNumber == "" {
			return nil, utils.NewValidationError("table number is required")
		}
		var count int64
		if err := ts.DB.Model(&models.Table{}).
			Where("tenant_id = ? AND table_number = ? AND active = ? AND id != ?",
				tenantID, *input.TableNumber, true, tableID).
			Count(&count).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		if count > 0 {
			return nil, utils.NewConflictError("Table number already exists")
		}
		table.TableNumber = *input.TableNumber
	}
	if input.Capacity != nil {
		if *input.Capacity < models.MinTableCapacity || *input.Capacity > models.MaxTableCapacity {
			return nil, utils.NewValidationError("table capacity must be between %d and %d",
				models.MinTableCapacity, models.MaxTableCapacity)
		}
		table.Capacity = *input.Capacity
	}
	if input.Name != nil {
		table.Name = *input.Name
	}
	if input.Section != nil {
		table.Section = *input.Section
	}
	if input.Floor != nil {
		table.Floor = *input.Floor
	}
	if input.PosX != nil {
		table.PosX = input.PosX
	}
	if input.PosY != nil {
		table.PosY = input.PosY
	}

	if err := ts.DB.Save(&table).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	notifyChange(ts.Cache, ts.Events, tenantID,
		[]string{tableKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventTableUpdate,
		map[string]interface{}{"table": &table, "stats": ts.statsPayload(tenantID)})
	return &table, nil
}

// DeleteTable melakukan soft delete: meja tidak pernah benar-benar dihapus
// karena punya history order / reservasi; active=false adalah state terminal.
func (ts *TableService) DeleteTable(tenantID, tableID uint, actor string) error {
	if actor == "" {
		actor = "system"
	}

	var table models.Table
	if err := ts.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("table %d not found", tableID)
		}
		return utils.NewInternalError(err)
	}

	oldStatus := table.Status
	table.Active = false

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&table).Error; err != nil {
			return err
		}
		log := models.TableStatusLog{
			TenantID:  tenantID,
			TableID:   table.ID,
			OldStatus: oldStatus,
			NewStatus: models.TableDeleted,
			Reason:    "table deleted",
			ChangedBy: actor,
		}
		return tx.Create(&log).Error
	})
	if err != nil {
		return utils.NewInternalError(err)
	}

	notifyChange(ts.Cache, ts.Events, tenantID,
		[]string{tableKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventTableDelete,
		map[string]interface{}{"table_id": table.ID, "stats": ts.statsPayload(tenantID)})

	utils.InfoLogger.Printf("Table %d soft-deleted by %s", table.ID, actor)
	return nil
}

// GetTable -> detail satu meja, cached 120s
func (ts *TableService) GetTable(tenantID, tableID uint) (interface{}, error) {
	key := fmt.Sprintf("%s:detail:%d", tableKeyPrefix(tenantID), tableID)
	return ts.fetch(key, cache.TableDetailTTL, func() (interface{}, error) {
		var table models.Table
		if err := ts.DB.Where("tenant_id = ?", tenantID).First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NewNotFoundError("table %d not found", tableID)
			}
			return nil, utils.NewInternalError(err)
		}
		return &table, nil
	})
}

// ListTables -> list meja dengan filter, cached 300s per varian filter
func (ts *TableService) ListTables(tenantID uint, filter TableFilter) (interface{}, error) {
	key := fmt.Sprintf("%s:list:s=%s:sec=%s:f=%d:ia=%t",
		tableKeyPrefix(tenantID), filter.Status, filter.Section, filter.Floor, filter.IncludeInactive)
	return ts.fetch(key, cache.TableListTTL, func() (interface{}, error) {
		query := ts.DB.Where("tenant_id = ?", tenantID)
		if !filter.IncludeInactive {
			query = query.Where("active = ?", true)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Section != "" {
			query = query.Where("section = ?", filter.Section)
		}
		if filter.Floor != 0 {
			query = query.Where("floor = ?", filter.Floor)
		}

		var tables []models.Table
		if err := query.Order("table_number asc").Find(&tables).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		return tables, nil
	})
}

// DashboardStats -> counter live per status, cached 30s
func (ts *TableService) DashboardStats(tenantID uint) (interface{}, error) {
	key := fmt.Sprintf("%s:stats", tableKeyPrefix(tenantID))
	return ts.fetch(key, cache.LiveCounterTTL, func() (interface{}, error) {
		stats, err := ts.dashboardStats(tenantID)
		if err != nil {
			return nil, err
		}
		return stats, nil
	})
}

// StatusHistory -> audit trail transisi satu meja
func (ts *TableService) StatusHistory(tenantID, tableID uint, limit int) ([]models.TableStatusLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.TableStatusLog
	if err := ts.DB.Where("tenant_id = ? AND table_id = ?", tenantID, tableID).
		Order("created_at desc").Order("id desc").Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return logs, nil
}

// dashboardStats menghitung langsung dari DB (tanpa cache) karena dipanggil
// untuk payload broadcast setelah invalidasi.
func (ts *TableService) dashboardStats(tenantID uint) (map[string]interface{}, error) {
	counts := map[string]int64{}
	var total int64

	for _, status := range []string{
		models.TableAvailable, models.TableOccupied, models.TableReserved,
		models.TableCleaning, models.TableOutOfOrder,
	} {
		var n int64
		if err := ts.DB.Model(&models.Table{}).
			Where("tenant_id = ? AND active = ? AND status = ?", tenantID, true, status).
			Count(&n).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		counts[status] = n
		total += n
	}

	return map[string]interface{}{
		"available":    counts[models.TableAvailable],
		"occupied":     counts[models.TableOccupied],
		"reserved":     counts[models.TableReserved],
		"cleaning":     counts[models.TableCleaning],
		"out_of_order": counts[models.TableOutOfOrder],
		"total":        total,
	}, nil
}

// statsPayload -> varian untuk payload broadcast: kegagalan hitung tidak
// boleh menggagalkan mutasi yang sudah commit, cukup di-log.
func (ts *TableService) statsPayload(tenantID uint) map[string]interface{} {
	stats, err := ts.dashboardStats(tenantID)
	if err != nil {
		utils.ErrorLogger.Printf("dashboard stats for tenant %d failed: %v", tenantID, err)
		return nil
	}
	return stats
}

// fetch lewat cache kalau ada, langsung ke loader kalau tidak.
func (ts *TableService) fetch(key string, ttl time.Duration, loader func() (interface{}, error)) (interface{}, error) {
	if ts.Cache == nil {
		return loader()
	}
	return ts.Cache.Fetch(key, ttl, loader)
}
