package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resto-ops/middlewares"
	"resto-ops/models"
	"resto-ops/services"
	"resto-ops/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

// CreateReservation -> booking meja baru
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req services.CreateReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.CreateReservation(middlewares.TenantID(c), req, middlewares.Actor(c))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetAllReservations -> list reservasi dengan filter window waktu
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	tableID, _ := strconv.ParseUint(c.Query("table_id"), 10, 32)
	filter := services.ReservationFilter{
		TableID: uint(tableID),
		Status:  c.Query("status"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest,
				utils.NewValidationError("invalid 'from' timestamp, expected RFC3339: %s", from))
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest,
				utils.NewValidationError("invalid 'to' timestamp, expected RFC3339: %s", to))
			return
		}
		filter.To = t
	}

	reservations, err := rc.Reservations.ListReservations(middlewares.TenantID(c), filter)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// UpdateReservation -> edit reservasi confirmed
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	reservationID, ok := parseID(c, "reservation_id")
	if !ok {
		return
	}

	var req services.UpdateReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.UpdateReservation(middlewares.TenantID(c), reservationID, req)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// CancelReservation -> confirmed => cancelled
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	rc.setStatus(c, rc.Reservations.CancelReservation, "Reservation cancelled")
}

// CompleteReservation -> tamu datang, reservasi selesai
func (rc *ReservationController) CompleteReservation(c *gin.Context) {
	rc.setStatus(c, rc.Reservations.CompleteReservation, "Reservation completed")
}

// MarkNoShow -> tamu tidak datang
func (rc *ReservationController) MarkNoShow(c *gin.Context) {
	rc.setStatus(c, rc.Reservations.MarkNoShow, "Reservation marked as no-show")
}

func (rc *ReservationController) setStatus(c *gin.Context,
	fn func(uint, uint) (*models.TableReservation, error), message string) {
	reservationID, ok := parseID(c, "reservation_id")
	if !ok {
		return
	}

	reservation, err := fn(middlewares.TenantID(c), reservationID)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, reservation)
}
