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

// ReservationService memegang booking meja: cek kapasitas, batas waktu,
// deteksi bentrok dengan buffer, dan lifecycle confirmed -> cancelled /
// completed / no_show.
type ReservationService struct {
	DB     *gorm.DB
	Cache  cache.Store
	Events kds.Publisher

	// Now bisa diganti di test untuk validasi batas waktu yang deterministik.
	Now func() time.Time
}

func NewReservationService(db *gorm.DB, store cache.Store, events kds.Publisher) *ReservationService {
	return &ReservationService{DB: db, Cache: store, Events: events, Now: time.Now}
}

type CreateReservationInput struct {
	TableID         uint      `json:"table_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerID      *uint     `json:"customer_id"`
	GuestCount      int       `json:"guest_count"`
	ReservedAt      time.Time `json:"reserved_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
}

type UpdateReservationInput struct {
	TableID         *uint      `json:"table_id"`
	CustomerName    *string    `json:"customer_name"`
	CustomerPhone   *string    `json:"customer_phone"`
	GuestCount      *int       `json:"guest_count"`
	ReservedAt      *time.Time `json:"reserved_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           *string    `json:"notes"`
}

type ReservationFilter struct {
	TableID uint
	Status  string
	From    time.Time
	To      time.Time
}

// create adalah inti pembuatan reservasi tanpa hook post-commit (dipakai
// bulk executor). Urutan validasi: table -> kapasitas -> batas waktu ->
// konflik; cek kapasitas selalu lebih dulu dari logika konflik.
func (rs *ReservationService) create(tenantID uint, input CreateReservationInput, actor string) (*models.TableReservation, error) {
	if input.CustomerName == "" {
		return nil, utils.NewValidationError("customer name is required")
	}
	if input.DurationMinutes == 0 {
		input.DurationMinutes = DefaultReservationDurationMinutes
	}
	if input.DurationMinutes < 0 {
		return nil, utils.NewValidationError("duration must be positive")
	}

	var table models.Table
	if err := rs.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, input.TableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", input.TableID)
		}
		return nil, utils.NewInternalError(err)
	}

	if input.GuestCount < 1 || input.GuestCount > models.MaxTableCapacity {
		return nil, utils.NewValidationError("guest count must be between 1 and %d", models.MaxTableCapacity)
	}
	if input.GuestCount > table.Capacity {
		return nil, utils.NewValidationError("guest count %d exceeds table capacity %d",
			input.GuestCount, table.Capacity)
	}

	now := rs.Now()
	if input.ReservedAt.IsZero() {
		return nil, utils.NewValidationError("reservation time is required")
	}
	if input.ReservedAt.Before(now) {
		return nil, utils.NewValidationError("reservation time cannot be in the past")
	}
	if input.ReservedAt.After(now.AddDate(0, 0, MaxAdvanceBookingDays)) {
		return nil, utils.NewValidationError("reservation cannot be more than %d days in advance", MaxAdvanceBookingDays)
	}

	if err := rs.checkConflict(tenantID, input.TableID, input.ReservedAt, input.DurationMinutes, 0); err != nil {
		return nil, err
	}

	if actor == "" {
		actor = "system"
	}
	reservation := models.TableReservation{
		TenantID:        tenantID,
		TableID:         input.TableID,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerID:      input.CustomerID,
		GuestCount:      input.GuestCount,
		ReservedAt:      input.ReservedAt,
		DurationMinutes: input.DurationMinutes,
		Status:          models.ReservationConfirmed,
		Notes:           input.Notes,
		CreatedBy:       actor,
	}
	if err := rs.DB.Create(&reservation).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &reservation, nil
}

// CreateReservation -> booking baru + invalidasi + broadcast
func (rs *ReservationService) CreateReservation(tenantID uint, input CreateReservationInput, actor string) (*models.TableReservation, error) {
	reservation, err := rs.create(tenantID, input, actor)
	if err != nil {
		return nil, err
	}

	notifyChange(rs.Cache, rs.Events, tenantID,
		[]string{reservationKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventReservationCreate, reservation)

	utils.InfoLogger.Printf("Reservation %d created for table %d at %s",
		reservation.ID, reservation.TableID, reservation.ReservedAt.Format(time.RFC3339))
	return reservation, nil
}

// UpdateReservation mengubah reservasi confirmed. Validasi "tidak boleh di
// masa lalu" hanya dijalankan untuk nilai tanggal BARU; tanggal tersimpan
// yang tidak diubah tidak divalidasi ulang.
func (rs *ReservationService) UpdateReservation(tenantID, reservationID uint, input UpdateReservationInput) (*models.TableReservation, error) {
	var reservation models.TableReservation
	if err := rs.DB.Where("tenant_id = ?", tenantID).
		First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("reservation %d not found", reservationID)
		}
		return nil, utils.NewInternalError(err)
	}
	if reservation.Status != models.ReservationConfirmed {
		return nil, utils.NewValidationError("only confirmed reservations can be updated")
	}

	targetTableID := reservation.TableID
	if input.TableID != nil {
		targetTableID = *input.TableID
	}
	var table models.Table
	if err := rs.DB.Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&table, targetTableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", targetTableID)
		}
		return nil, utils.NewInternalError(err)
	}

	guestCount := reservation.GuestCount
	if input.GuestCount != nil {
		guestCount = *input.GuestCount
	}
	if guestCount < 1 || guestCount > models.MaxTableCapacity {
		return nil, utils.NewValidationError("guest count must be between 1 and %d", models.MaxTableCapacity)
	}
	if guestCount > table.Capacity {
		return nil, utils.NewValidationError("guest count %d exceeds table capacity %d", guestCount, table.Capacity)
	}

	reservedAt := reservation.ReservedAt
	if input.ReservedAt != nil {
		now := rs.Now()
		if input.ReservedAt.Before(now) {
			return nil, utils.NewValidationError("reservation time cannot be in the past")
		}
		if input.ReservedAt.After(now.AddDate(0, 0, MaxAdvanceBookingDays)) {
			return nil, utils.NewValidationError("reservation cannot be more than %d days in advance", MaxAdvanceBookingDays)
		}
		reservedAt = *input.ReservedAt
	}

	durationMinutes := reservation.DurationMinutes
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return nil, utils.NewValidationError("duration must be positive")
		}
		durationMinutes = *input.DurationMinutes
	}

	// Re-check konflik kalau meja, jadwal, ATAU durasi berubah; durasi yang
	// memanjang bisa menelan start booking lain. Reservasi ini dikecualikan
	// dari pengecekan terhadap dirinya sendiri.
	if input.TableID != nil || input.ReservedAt != nil || input.DurationMinutes != nil {
		if err := rs.checkConflict(tenantID, targetTableID, reservedAt, durationMinutes, reservation.ID); err != nil {
			return nil, err
		}
	}

	reservation.TableID = targetTableID
	reservation.GuestCount = guestCount
	reservation.ReservedAt = reservedAt
	reservation.DurationMinutes = durationMinutes
	if input.CustomerName != nil {
		if *input.CustomerName == "" {
			return nil, utils.NewValidationError("customer name is required")
		}
		reservation.CustomerName = *input.CustomerName
	}
	if input.CustomerPhone != nil {
		reservation.CustomerPhone = *input.CustomerPhone
	}
	if input.Notes != nil {
		reservation.Notes = *input.Notes
	}

	if err := rs.DB.Save(&reservation).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	notifyChange(rs.Cache, rs.Events, tenantID,
		[]string{reservationKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventReservationUpdate, &reservation)
	return &reservation, nil
}

// CancelReservation -> confirmed => cancelled
func (rs *ReservationService) CancelReservation(tenantID, reservationID uint) (*models.TableReservation, error) {
	return rs.setStatus(tenantID, reservationID, models.ReservationCancelled)
}

// CompleteReservation -> confirmed => completed
func (rs *ReservationService) CompleteReservation(tenantID, reservationID uint) (*models.TableReservation, error) {
	return rs.setStatus(tenantID, reservationID, models.ReservationCompleted)
}

// MarkNoShow -> confirmed => no_show
func (rs *ReservationService) MarkNoShow(tenantID, reservationID uint) (*models.TableReservation, error) {
	return rs.setStatus(tenantID, reservationID, models.ReservationNoShow)
}

func (rs *ReservationService) setStatus(tenantID, reservationID uint, newStatus string) (*models.TableReservation, error) {
	var reservation models.TableReservation
	if err := rs.DB.Where("tenant_id = ?", tenantID).
		First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("reservation %d not found", reservationID)
		}
		return nil, utils.NewInternalError(err)
	}

	allowed := false
	for _, next := range models.ReservationStatusFlow[reservation.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, utils.NewConflictError("reservation is %s, cannot change to %s",
			reservation.Status, newStatus)
	}

	reservation.Status = newStatus
	if err := rs.DB.Save(&reservation).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	notifyChange(rs.Cache, rs.Events, tenantID,
		[]string{reservationKeyPrefix(tenantID)}, kds.FloorRoles, kds.EventReservationUpdate, &reservation)

	utils.InfoLogger.Printf("Reservation %d marked %s", reservation.ID, newStatus)
	return &reservation, nil
}

// ListReservations -> list dengan filter window waktu, cached 60s
func (rs *ReservationService) ListReservations(tenantID uint, filter ReservationFilter) (interface{}, error) {
	key := fmt.Sprintf("%s:list:t=%d:s=%s:from=%d:to=%d",
		reservationKeyPrefix(tenantID), filter.TableID, filter.Status,
		filter.From.Unix(), filter.To.Unix())

	loader := func() (interface{}, error) {
		query := rs.DB.Where("tenant_id = ?", tenantID)
		if filter.TableID != 0 {
			query = query.Where("table_id = ?", filter.TableID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if !filter.From.IsZero() {
			query = query.Where("reserved_at >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			query = query.Where("reserved_at < ?", filter.To)
		}

		var reservations []models.TableReservation
		if err := query.Order("reserved_at asc").Find(&reservations).Error; err != nil {
			return nil, utils.NewInternalError(err)
		}
		return reservations, nil
	}

	if rs.Cache == nil {
		return loader()
	}
	return rs.Cache.Fetch(key, cache.ReservationListTTL, loader)
}

// checkConflict memuat reservasi confirmed meja target dan menjalankan
// predikat buffered-overlap dua arah: start yang diusulkan terhadap window
// reservasi lain, DAN start reservasi lain terhadap window yang diusulkan.
// Bentrok dilaporkan sebagai ConflictError dengan detail reservasi yang bentrok.
func (rs *ReservationService) checkConflict(tenantID, tableID uint, proposedStart time.Time, durationMinutes int, excludeID uint) error {
	var existing []models.TableReservation
	if err := rs.DB.Where("tenant_id = ? AND table_id = ? AND status = ?",
		tenantID, tableID, models.ReservationConfirmed).
		Find(&existing).Error; err != nil {
		return utils.NewInternalError(err)
	}

	conflict := FindConflict(existing, proposedStart, excludeID)
	if conflict == nil {
		conflict = FindWindowConflict(existing, proposedStart, durationMinutes, excludeID)
	}
	if conflict != nil {
		err := utils.NewConflictError("time slot conflicts with reservation for %s at %s",
			conflict.CustomerName, conflict.ReservedAt.Format("15:04"))
		err.Detail = conflict
		return err
	}
	return nil
}
