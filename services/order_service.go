package services

import (
	"errors"

	"gorm.io/gorm"

	"resto-ops/cache"
	"resto-ops/kds"
	"resto-ops/models"
	"resto-ops/utils"
)

// OrderService memegang lifecycle order di level agregat. Detail per-station
// ada di KitchenService; di sini hanya transition table order + pembersihan
// kitchen display saat order terminal.
type OrderService struct {
	DB     *gorm.DB
	Cache  cache.Store
	Events kds.Publisher
}

func NewOrderService(db *gorm.DB, store cache.Store, events kds.Publisher) *OrderService {
	return &OrderService{DB: db, Cache: store, Events: events}
}

// CreateOrder -> order baru (pending) yang mereferensikan satu meja aktif
func (oc *OrderService) CreateOrder(tenantID, tableID uint) (*models.Order, error) {
	var table models.Table
	if err := oc.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", tableID)
		}
		return nil, utils.NewInternalError(err)
	}

	order := models.Order{
		TenantID: tenantID,
		TableID:  tableID,
		Status:   models.OrderPending,
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	notifyChange(oc.Cache, oc.Events, tenantID,
		[]string{orderKeyPrefix(tenantID)}, kds.KitchenRoles, kds.EventOrderUpdate, &order)

	utils.InfoLogger.Printf("Order %d created for table %s", order.ID, table.TableNumber)
	return &order, nil
}

// UpdateOrderStatus -> transisi order lewat transition table. Saat order
// mencapai status terminal, row kitchen display-nya dihapus (hard) dalam
// transaksi yang sama.
func (oc *OrderService) UpdateOrderStatus(tenantID, orderID uint, newStatus string) (*models.Order, error) {
	if _, known := models.OrderStatusFlow[newStatus]; !known {
		return nil, utils.NewValidationError("invalid order status: %s", newStatus)
	}

	var order models.Order
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("order %d not found", orderID)
			}
			return utils.NewInternalError(err)
		}

		if !models.CanTransitionOrder(order.Status, newStatus) {
			return utils.NewConflictError("invalid order transition %s -> %s", order.Status, newStatus)
		}

		order.Status = newStatus
		if err := tx.Save(&order).Error; err != nil {
			return utils.NewInternalError(err)
		}

		if models.IsTerminalOrderStatus(newStatus) {
			if err := tx.Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
				Delete(&models.KitchenDisplay{}).Error; err != nil {
				return utils.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyChange(oc.Cache, oc.Events, tenantID,
		[]string{orderKeyPrefix(tenantID), kitchenKeyPrefix(tenantID)},
		kds.KitchenRoles, kds.EventOrderUpdate, &order)

	utils.InfoLogger.Printf("Order %d status changed to %s", order.ID, newStatus)
	return &order, nil
}

// GetOrder -> detail satu order
func (oc *OrderService) GetOrder(tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := oc.DB.Where("tenant_id = ?", tenantID).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("order %d not found", orderID)
		}
		return nil, utils.NewInternalError(err)
	}
	return &order, nil
}

// ListActiveOrders -> order yang masih hidup, cached di tier counter live
func (oc *OrderService) ListActiveOrders(tenantID uint) (interface{}, error) {
	key := orderKeyPrefix(tenantID) + ":active"
	loader := func() (interface{}, error) {
		var orders []models.Order
		if err := oc.DB.Where("tenant_id = ? AND status IN ?", tenantID, models.OrderActiveStatuses).
			Order("created_at asc").Find(&orders).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		return orders, nil
	}
	if oc.Cache == nil {
		return loader()
	}
	return oc.Cache.Fetch(key, cache.LiveCounterTTL, loader)
}
