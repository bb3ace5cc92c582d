package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resto-ops/models"
)

func newBulkFixture(t *testing.T) (*BulkService, *TableService, *countingStore, *eventRecorder) {
	t.Helper()
	db := setupTestDB(t)
	store := newCountingStore()
	recorder := &eventRecorder{}

	ts := NewTableService(db, nil, nil)
	rs := NewReservationService(db, nil, nil)
	rs.Now = testTime
	bs := NewBulkService(db, store, recorder, ts, rs)
	return bs, ts, store, recorder
}

func TestImportTablesBestEffort(t *testing.T) {
	bs, _, _, _ := newBulkFixture(t)

	// Baris #2 duplikat baris #1: hanya dia yang gagal, sisanya tetap masuk
	result := bs.ImportTables(testTenant, []CreateTableInput{
		{TableNumber: "P1", Capacity: 2},
		{TableNumber: "P1", Capacity: 4},
		{TableNumber: "P2", Capacity: 4},
	})

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Successful)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, 1, result.Summary.Conflicts)

	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.Equal(t, "Table number already exists", result.Results[1].Error)
	assert.True(t, result.Results[2].Success)
}

func TestBulkInvalidatesOncePerBatch(t *testing.T) {
	bs, ts, store, recorder := newBulkFixture(t)

	table1, err := ts.CreateTable(testTenant, CreateTableInput{TableNumber: "B1", Capacity: 4})
	require.NoError(t, err)
	table2, err := ts.CreateTable(testTenant, CreateTableInput{TableNumber: "B2", Capacity: 4})
	require.NoError(t, err)

	result := bs.BulkUpdateTableStatus(testTenant, []BulkTableStatusItem{
		{TableID: table1.ID, Status: models.TableCleaning},
		{TableID: table2.ID, Status: models.TableCleaning},
		{TableID: 999, Status: models.TableCleaning},
	}, "user:1")

	assert.Equal(t, 2, result.Summary.Successful)
	assert.Equal(t, 1, result.Summary.Failed)

	// Invalidasi + broadcast SEKALI untuk seluruh batch, bukan per item
	assert.Equal(t, 1, store.calls())
	assert.Equal(t, 1, recorder.count())
	assert.Equal(t, "bulk_update", recorder.last().Event)
}

func TestBulkWithNoSuccessSkipsInvalidation(t *testing.T) {
	bs, _, store, recorder := newBulkFixture(t)

	result := bs.BulkUpdateTableStatus(testTenant, []BulkTableStatusItem{
		{TableID: 997, Status: models.TableCleaning},
		{TableID: 998, Status: models.TableCleaning},
	}, "")

	assert.Zero(t, result.Summary.Successful)
	assert.Zero(t, store.calls())
	assert.Zero(t, recorder.count())
}

func TestGenerateTablesFromTemplate(t *testing.T) {
	bs, ts, _, _ := newBulkFixture(t)

	result, err := bs.GenerateTables(testTenant, TableTemplate{
		Prefix: "T", Count: 5, StartNumber: 10, Capacity: 6, Section: "terrace", Floor: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Summary.Successful)

	listed, err := ts.ListTables(testTenant, TableFilter{})
	require.NoError(t, err)
	tables := listed.([]models.Table)
	require.Len(t, tables, 5)

	numbers := map[string]bool{}
	for _, table := range tables {
		numbers[table.TableNumber] = true
		assert.Equal(t, 6, table.Capacity)
		assert.Equal(t, 2, table.Floor)
	}
	assert.True(t, numbers["T10"])
	assert.True(t, numbers["T14"])

	// Count di luar batas ditolak sebelum menyentuh DB
	_, err = bs.GenerateTables(testTenant, TableTemplate{Prefix: "X", Count: 0})
	assert.Error(t, err)
	_, err = bs.GenerateTables(testTenant, TableTemplate{Prefix: "X", Count: 201})
	assert.Error(t, err)
}

func TestBulkCreateReservationsCountsConflicts(t *testing.T) {
	bs, ts, _, _ := newBulkFixture(t)

	table, err := ts.CreateTable(testTenant, CreateTableInput{TableNumber: "R1", Capacity: 4})
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	result := bs.BulkCreateReservations(testTenant, []CreateReservationInput{
		{TableID: table.ID, CustomerName: "Budi", GuestCount: 2, ReservedAt: start},
		// Bentrok dengan item pertama yang sudah sukses
		{TableID: table.ID, CustomerName: "Sari", GuestCount: 2, ReservedAt: start.Add(time.Hour)},
		// Gagal validasi biasa, bukan conflict
		{TableID: table.ID, CustomerName: "", GuestCount: 2, ReservedAt: start.AddDate(0, 0, 1)},
	}, "user:1")

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Successful)
	assert.Equal(t, 2, result.Summary.Failed)
	assert.Equal(t, 1, result.Summary.Conflicts)
	assert.Equal(t, result.Summary.Total, result.Summary.Successful+result.Summary.Failed)
}
