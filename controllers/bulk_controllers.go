package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-ops/middlewares"
	"resto-ops/services"
	"resto-ops/utils"
)

type BulkController struct {
	Bulk *services.BulkService
}

func NewBulkController(bulk *services.BulkService) *BulkController {
	return &BulkController{Bulk: bulk}
}

// BulkUpdateTableStatus -> N transisi status sekaligus, laporan per baris
func (bc *BulkController) BulkUpdateTableStatus(c *gin.Context) {
	var body struct {
		Items []services.BulkTableStatusItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := bc.Bulk.BulkUpdateTableStatus(middlewares.TenantID(c), body.Items, middlewares.Actor(c))
	utils.RespondJSON(c, http.StatusOK, "Bulk status update finished", result)
}

// ImportTables -> import baris meja yang sudah di-parse oleh layer atas
func (bc *BulkController) ImportTables(c *gin.Context) {
	var body struct {
		Rows []services.CreateTableInput `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := bc.Bulk.ImportTables(middlewares.TenantID(c), body.Rows)
	utils.RespondJSON(c, http.StatusOK, "Table import finished", result)
}

// GenerateTables -> buat meja berpola dari template
func (bc *BulkController) GenerateTables(c *gin.Context) {
	var tmpl services.TableTemplate
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := bc.Bulk.GenerateTables(middlewares.TenantID(c), tmpl)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table generation finished", result)
}

// BulkCreateReservations -> N booking sekaligus
func (bc *BulkController) BulkCreateReservations(c *gin.Context) {
	var body struct {
		Items []services.CreateReservationInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := bc.Bulk.BulkCreateReservations(middlewares.TenantID(c), body.Items, middlewares.Actor(c))
	utils.RespondJSON(c, http.StatusOK, "Bulk reservation finished", result)
}
