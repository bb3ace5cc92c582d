package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-ops/middlewares"
	"resto-ops/services"
	"resto-ops/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, utils.NewValidationError("invalid %s", param))
		return 0, false
	}
	return uint(id), true
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req services.CreateTableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.CreateTable(middlewares.TenantID(c), req)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list meja dengan filter opsional
func (tc *TableController) GetAllTables(c *gin.Context) {
	floor, _ := strconv.Atoi(c.Query("floor"))
	filter := services.TableFilter{
		Status:          c.Query("status"),
		Section:         c.Query("section"),
		Floor:           floor,
		IncludeInactive: c.Query("include_inactive") == "true",
	}

	tables, err := tc.Tables.ListTables(middlewares.TenantID(c), filter)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	table, err := tc.Tables.GetTable(middlewares.TenantID(c), tableID)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTableStatus -> transisi status meja
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.UpdateTableStatus(middlewares.TenantID(c), tableID,
		body.Status, middlewares.Actor(c), body.Reason)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// UpdateTable -> edit atribut meja
func (tc *TableController) UpdateTable(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	var req services.UpdateTableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.UpdateTable(middlewares.TenantID(c), tableID, req)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> soft delete meja
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	if err := tc.Tables.DeleteTable(middlewares.TenantID(c), tableID, middlewares.Actor(c)); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}

// MarkTableClean -> cleaner menandai meja siap dipakai
func (tc *TableController) MarkTableClean(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	table, err := tc.Tables.MarkTableClean(middlewares.TenantID(c), tableID, middlewares.Actor(c))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table marked as clean", table)
}

// GetStatusHistory -> audit trail transisi meja
func (tc *TableController) GetStatusHistory(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := tc.Tables.StatusHistory(middlewares.TenantID(c), tableID, limit)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status history", logs)
}

// GetDashboardStats -> counter live status meja
func (tc *TableController) GetDashboardStats(c *gin.Context) {
	stats, err := tc.Tables.DashboardStats(middlewares.TenantID(c))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
