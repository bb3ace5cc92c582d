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

const (
	// DefaultMetricsWindow -> trailing window metrik prep time
	DefaultMetricsWindow = 7 * 24 * time.Hour

	// OnTimeToleranceRatio: row dianggap on-time kalau durasi aktual masih
	// di dalam 110% estimasi.
	OnTimeToleranceRatio = 1.10
)

// KitchenService memegang kitchen display per-station dan agregasi status
// order turunannya: order ready hanya kalau SEMUA station ready, order naik
// ke preparing begitu satu station mulai masak.
type KitchenService struct {
	DB     *gorm.DB
	Cache  cache.Store
	Events kds.Publisher

	Now func() time.Time
}

func NewKitchenService(db *gorm.DB, store cache.Store, events kds.Publisher) *KitchenService {
	return &KitchenService{DB: db, Cache: store, Events: events, Now: time.Now}
}

type CreateDisplayInput struct {
	OrderID       uint   `json:"order_id"`
	StationName   string `json:"station_name"`
	Priority      int    `json:"priority"`
	EstimatedTime int    `json:"estimated_time"`
}

// StationWorkload -> beban kerja satu station saat ini
type StationWorkload struct {
	Station     string  `json:"station"`
	Pending     int     `json:"pending"`
	Preparing   int     `json:"preparing"`
	Total       int     `json:"total"`
	AvgPriority float64 `json:"avg_priority"`
}

// CreateDisplay -> daftarkan satu station untuk order yang masuk dapur
func (ks *KitchenService) CreateDisplay(tenantID uint, input CreateDisplayInput) (*models.KitchenDisplay, error) {
	if input.StationName == "" {
		return nil, utils.NewValidationError("station name is required")
	}
	if input.Priority < models.MinDisplayPriority || input.Priority > models.MaxDisplayPriority {
		return nil, utils.NewValidationError("priority must be between %d and %d",
			models.MinDisplayPriority, models.MaxDisplayPriority)
	}
	if input.EstimatedTime < 0 {
		return nil, utils.NewValidationError("estimated time must not be negative")
	}

	var order models.Order
	if err := ks.DB.Where("tenant_id = ?", tenantID).
		First(&order, input.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("order %d not found", input.OrderID)
		}
		return nil, utils.NewInternalError(err)
	}
	if models.IsTerminalOrderStatus(order.Status) {
		return nil, utils.NewValidationError("order %d is already %s", order.ID, order.Status)
	}

	// Station mengikuti posisi order saat masuk workflow dapur.
	status := models.OrderPending
	if order.Status == models.OrderConfirmed {
		status = models.OrderConfirmed
	}

	display := models.KitchenDisplay{
		TenantID:      tenantID,
		OrderID:       order.ID,
		StationName:   input.StationName,
		Priority:      input.Priority,
		Status:        status,
		EstimatedTime: input.EstimatedTime,
		DisplayedAt:   ks.Now(),
	}
	if err := ks.DB.Create(&display).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	notifyChange(ks.Cache, ks.Events, tenantID,
		[]string{kitchenKeyPrefix(tenantID)}, kds.KitchenRoles, kds.EventKitchenUpdate, &display)
	return &display, nil
}

// UpdateDisplayStatus menjalankan transisi status satu station, maju saja.
// Side effect: masuk preparing stempel start time + promosi order
// confirmed => preparing; masuk ready stempel completion time dan, kalau
// SEMUA station order itu sudah ready, promosi order => ready.
func (ks *KitchenService) UpdateDisplayStatus(tenantID, displayID uint, newStatus string) (*models.KitchenDisplay, error) {
	if _, known := models.KitchenStatusFlow[newStatus]; !known {
		return nil, utils.NewValidationError("invalid kitchen status: %s", newStatus)
	}

	var display models.KitchenDisplay
	var promotedOrder *models.Order

	err := ks.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).
			First(&display, displayID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("kitchen display %d not found", displayID)
			}
			return utils.NewInternalError(err)
		}

		if !models.CanTransitionKitchen(display.Status, newStatus) {
			return utils.NewConflictError("invalid kitchen transition %s -> %s for station %s",
				display.Status, newStatus, display.StationName)
		}

		now := ks.Now()
		display.Status = newStatus

		switch newStatus {
		case models.OrderPreparing:
			if display.StartedAt == nil {
				display.StartedAt = &now
			}
			// Station pertama yang mulai masak menarik order ikut preparing.
			var order models.Order
			if err := tx.Where("tenant_id = ?", tenantID).First(&order, display.OrderID).Error; err != nil {
				return utils.NewInternalError(err)
			}
			if order.Status == models.OrderConfirmed {
				order.Status = models.OrderPreparing
				if err := tx.Save(&order).Error; err != nil {
					return utils.NewInternalError(err)
				}
				promotedOrder = &order
			}

		case models.OrderReady:
			if display.CompletedAt == nil {
				display.CompletedAt = &now
			}
			// Order ready hanya kalau tidak ada station lain yang belum ready.
			var notReady int64
			if err := tx.Model(&models.KitchenDisplay{}).
				Where("tenant_id = ? AND order_id = ? AND id != ? AND status != ?",
					tenantID, display.OrderID, display.ID, models.OrderReady).
				Count(&notReady).Error; err != nil {
				return utils.NewInternalError(err)
			}
			if notReady == 0 {
				var order models.Order
				if err := tx.Where("tenant_id = ?", tenantID).First(&order, display.OrderID).Error; err != nil {
					return utils.NewInternalError(err)
				}
				if models.CanTransitionOrder(order.Status, models.OrderReady) {
					order.Status = models.OrderReady
					if err := tx.Save(&order).Error; err != nil {
						return utils.NewInternalError(err)
					}
					promotedOrder = &order
				}
			}
		}

		if err := tx.Save(&display).Error; err != nil {
			return utils.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyChange(ks.Cache, ks.Events, tenantID,
		[]string{kitchenKeyPrefix(tenantID), orderKeyPrefix(tenantID)},
		kds.KitchenRoles, kds.EventKitchenUpdate, &display)
	if promotedOrder != nil {
		notifyChange(ks.Cache, ks.Events, tenantID, nil,
			kds.KitchenRoles, kds.EventOrderUpdate, promotedOrder)
		utils.InfoLogger.Printf("Order %d promoted to %s", promotedOrder.ID, promotedOrder.Status)
	}
	return &display, nil
}

// DeleteDisplaysForOrder menghapus (hard) semua row station sebuah order.
// Hanya boleh setelah order terminal dan tracking dapur tidak dibutuhkan lagi.
func (ks *KitchenService) DeleteDisplaysForOrder(tenantID, orderID uint) error {
	var order models.Order
	if err := ks.DB.Where("tenant_id = ?", tenantID).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("order %d not found", orderID)
		}
		return utils.NewInternalError(err)
	}
	if !models.IsTerminalOrderStatus(order.Status) {
		return utils.NewValidationError("order %d is still %s, kitchen tracking cannot be removed",
			orderID, order.Status)
	}

	if err := ks.DB.Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Delete(&models.KitchenDisplay{}).Error; err != nil {
		return utils.NewInternalError(err)
	}

	notifyChange(ks.Cache, ks.Events, tenantID,
		[]string{kitchenKeyPrefix(tenantID)}, kds.KitchenRoles, kds.EventKitchenUpdate,
		map[string]interface{}{"order_id": orderID, "removed": true})
	return nil
}

// ListDisplays -> antrian dapur aktif (non-terminal), urut prioritas turun
// lalu umur antrian
func (ks *KitchenService) ListDisplays(tenantID uint, station string) (interface{}, error) {
	key := fmt.Sprintf("%s:queue:st=%s", kitchenKeyPrefix(tenantID), station)
	loader := func() (interface{}, error) {
		query := ks.DB.Where("tenant_id = ? AND status IN ?", tenantID, []string{
			models.OrderPending, models.OrderConfirmed, models.OrderPreparing, models.OrderReady,
		})
		if station != "" {
			query = query.Where("station_name = ?", station)
		}
		var displays []models.KitchenDisplay
		if err := query.Order("priority desc").Order("displayed_at asc").
			Find(&displays).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		return displays, nil
	}
	if ks.Cache == nil {
		return loader()
	}
	return ks.Cache.Fetch(key, cache.LiveCounterTTL, loader)
}

// AveragePrepTime menghitung rata-rata menit (completed - started) station
// dalam trailing window. Nol row => 0, bukan error / NaN.
func (ks *KitchenService) AveragePrepTime(tenantID uint, station string, window time.Duration) (float64, error) {
	rows, err := ks.completedRows(tenantID, station, window)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var totalMinutes float64
	for _, row := range rows {
		totalMinutes += row.CompletedAt.Sub(*row.StartedAt).Minutes()
	}
	return totalMinutes / float64(len(rows)), nil
}

// OnTimeRate menghitung fraksi row selesai yang durasi aktualnya masih dalam
// 110% estimasi (estimasi kosong dianggap 30 menit). Nol row => 0.
func (ks *KitchenService) OnTimeRate(tenantID uint, station string, window time.Duration) (float64, error) {
	rows, err := ks.completedRows(tenantID, station, window)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	onTime := 0
	for _, row := range rows {
		estimate := row.EstimatedTime
		if estimate == 0 {
			estimate = models.DefaultEstimatedPrepMinutes
		}
		limit := time.Duration(float64(estimate)*OnTimeToleranceRatio) * time.Minute
		if row.CompletedAt.Sub(*row.StartedAt) <= limit {
			onTime++
		}
	}
	return float64(onTime) / float64(len(rows)), nil
}

// Workload mengelompokkan row non-terminal per station: sub-count pending vs
// preparing plus rata-rata prioritas.
func (ks *KitchenService) Workload(tenantID uint) ([]StationWorkload, error) {
	var displays []models.KitchenDisplay
	if err := ks.DB.Where("tenant_id = ? AND status IN ?", tenantID, []string{
		models.OrderPending, models.OrderConfirmed, models.OrderPreparing,
		models.OrderReady, models.OrderServed,
	}).Find(&displays).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	type bucket struct {
		pending, preparing, total, prioritySum int
	}
	buckets := map[string]*bucket{}
	var stations []string

	for _, d := range displays {
		b, ok := buckets[d.StationName]
		if !ok {
			b = &bucket{}
			buckets[d.StationName] = b
			stations = append(stations, d.StationName)
		}
		b.total++
		b.prioritySum += d.Priority
		switch d.Status {
		case models.OrderPending, models.OrderConfirmed:
			b.pending++
		case models.OrderPreparing:
			b.preparing++
		}
	}

	workloads := make([]StationWorkload, 0, len(stations))
	for _, station := range stations {
		b := buckets[station]
		workloads = append(workloads, StationWorkload{
			Station:     station,
			Pending:     b.pending,
			Preparing:   b.preparing,
			Total:       b.total,
			AvgPriority: float64(b.prioritySum) / float64(b.total),
		})
	}
	return workloads, nil
}

// Analytics -> bundel metrik dapur untuk endpoint reporting, cached 600s
func (ks *KitchenService) Analytics(tenantID uint, station string) (interface{}, error) {
	key := fmt.Sprintf("%s:analytics:st=%s", kitchenKeyPrefix(tenantID), station)
	loader := func() (interface{}, error) {
		avgPrep, err := ks.AveragePrepTime(tenantID, station, DefaultMetricsWindow)
		if err != nil {
			return nil, err
		}
		onTime, err := ks.OnTimeRate(tenantID, station, DefaultMetricsWindow)
		if err != nil {
			return nil, err
		}
		workload, err := ks.Workload(tenantID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"avg_prep_minutes": avgPrep,
			"on_time_rate":     onTime,
			"workload":         workload,
		}, nil
	}
	if ks.Cache == nil {
		return loader()
	}
	return ks.Cache.Fetch(key, cache.AnalyticsTTL, loader)
}

func (ks *KitchenService) completedRows(tenantID uint, station string, window time.Duration) ([]models.KitchenDisplay, error) {
	if window <= 0 {
		window = DefaultMetricsWindow
	}
	since := ks.Now().Add(-window)

	query := ks.DB.Where(
		"tenant_id = ? AND started_at IS NOT NULL AND completed_at IS NOT NULL AND completed_at >= ?",
		tenantID, since)
	if station != "" {
		query = query.Where("station_name = ?", station)
	}

	var rows []models.KitchenDisplay
	if err := query.Find(&rows).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return rows, nil
}
