package services

import (
	"fmt"

	"gorm.io/gorm"

	"resto-ops/cache"
	"resto-ops/kds"
	"resto-ops/utils"
)

// BulkService menjalankan N operasi independen sejenis dengan semantik
// best-effort: kegagalan satu item tidak pernah membatalkan sisanya, setiap
// item dicatat sukses/gagal dengan pesan yang bisa ditampilkan per baris.
// Invalidasi cache + broadcast dijalankan SEKALI untuk seluruh batch, dan
// hanya kalau minimal satu item sukses.
type BulkService struct {
	DB     *gorm.DB
	Cache  cache.Store
	Events kds.Publisher

	Tables       *TableService
	Reservations *ReservationService
}

func NewBulkService(db *gorm.DB, store cache.Store, events kds.Publisher,
	tables *TableService, reservations *ReservationService) *BulkService {
	return &BulkService{
		DB: db, Cache: store, Events: events,
		Tables: tables, Reservations: reservations,
	}
}

type BulkItemResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	ID      uint   `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BulkSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Conflicts  int `json:"conflicts"`
}

type BulkResult struct {
	Results []BulkItemResult `json:"results"`
	Summary BulkSummary      `json:"summary"`
}

type BulkTableStatusItem struct {
	TableID uint   `json:"table_id"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
}

// TableTemplate men-generate meja berpola (mis. prefix "T", 10 meja kapasitas
// 4 di lantai 2) tanpa menyusun baris import satu-satu.
type TableTemplate struct {
	Prefix      string `json:"prefix"`
	Count       int    `json:"count"`
	StartNumber int    `json:"start_number"`
	Capacity    int    `json:"capacity"`
	Section     string `json:"section"`
	Floor       int    `json:"floor"`
}

const maxTemplateCount = 200

// BulkUpdateTableStatus -> N transisi status meja, per-item best-effort
func (bs *BulkService) BulkUpdateTableStatus(tenantID uint, items []BulkTableStatusItem, actor string) *BulkResult {
	result := newBulkResult(len(items))
	for i, item := range items {
		table, err := bs.Tables.setStatus(tenantID, item.TableID, item.Status, actor, item.Reason)
		if err != nil {
			result.record(i, 0, err)
			continue
		}
		result.record(i, table.ID, nil)
	}
	bs.finish(tenantID, result, []string{tableKeyPrefix(tenantID)}, kds.FloorRoles)
	return result
}

// ImportTables -> import baris meja yang sudah di-parse (format file bukan
// urusan layer ini)
func (bs *BulkService) ImportTables(tenantID uint, rows []CreateTableInput) *BulkResult {
	result := newBulkResult(len(rows))
	for i, row := range rows {
		table, err := bs.Tables.create(tenantID, row)
		if err != nil {
			result.record(i, 0, err)
			continue
		}
		result.record(i, table.ID, nil)
	}
	bs.finish(tenantID, result, []string{tableKeyPrefix(tenantID)}, kds.FloorRoles)
	return result
}

// GenerateTables -> buat meja dari template bernomor urut
func (bs *BulkService) GenerateTables(tenantID uint, tmpl TableTemplate) (*BulkResult, error) {
	if tmpl.Count < 1 || tmpl.Count > maxTemplateCount {
		return nil, utils.NewValidationError("template count must be between 1 and %d", maxTemplateCount)
	}
	if tmpl.StartNumber < 1 {
		tmpl.StartNumber = 1
	}

	result := newBulkResult(tmpl.Count)
	for i := 0; i < tmpl.Count; i++ {
		input := CreateTableInput{
			TableNumber: fmt.Sprintf("%s%d", tmpl.Prefix, tmpl.StartNumber+i),
			Capacity:    tmpl.Capacity,
			Section:     tmpl.Section,
			Floor:       tmpl.Floor,
		}
		table, err := bs.Tables.create(tenantID, input)
		if err != nil {
			result.record(i, 0, err)
			continue
		}
		result.record(i, table.ID, nil)
	}
	bs.finish(tenantID, result, []string{tableKeyPrefix(tenantID)}, kds.FloorRoles)
	return result, nil
}

// BulkCreateReservations -> N booking independen, konflik dihitung terpisah
// di summary
func (bs *BulkService) BulkCreateReservations(tenantID uint, items []CreateReservationInput, actor string) *BulkResult {
	result := newBulkResult(len(items))
	for i, item := range items {
		reservation, err := bs.Reservations.create(tenantID, item, actor)
		if err != nil {
			result.record(i, 0, err)
			continue
		}
		result.record(i, reservation.ID, nil)
	}
	bs.finish(tenantID, result, []string{reservationKeyPrefix(tenantID)}, kds.FloorRoles)
	return result
}

func newBulkResult(total int) *BulkResult {
	return &BulkResult{
		Results: make([]BulkItemResult, 0, total),
		Summary: BulkSummary{Total: total},
	}
}

func (r *BulkResult) record(index int, id uint, err error) {
	item := BulkItemResult{Index: index, Success: err == nil, ID: id}
	if err != nil {
		item.Error = err.Error()
		r.Summary.Failed++
		if utils.IsConflict(err) {
			r.Summary.Conflicts++
		}
	} else {
		r.Summary.Successful++
	}
	r.Results = append(r.Results, item)
}

// finish menjalankan invalidasi + fanout sekali untuk seluruh batch, hanya
// kalau ada item yang benar-benar mengubah state.
func (bs *BulkService) finish(tenantID uint, result *BulkResult, patterns []string, roles []string) {
	if result.Summary.Successful == 0 {
		return
	}
	notifyChange(bs.Cache, bs.Events, tenantID, patterns, roles,
		kds.EventBulkUpdate, result.Summary)
	utils.InfoLogger.Printf("Bulk operation finished: %d/%d successful (tenant=%d)",
		result.Summary.Successful, result.Summary.Total, tenantID)
}
