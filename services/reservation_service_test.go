package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resto-ops/models"
	"resto-ops/utils"
)

func newReservationFixture(t *testing.T) (*ReservationService, *TableService, *models.Table) {
	t.Helper()
	db := setupTestDB(t)
	ts := NewTableService(db, nil, nil)
	rs := NewReservationService(db, nil, nil)
	rs.Now = testTime

	table, err := ts.CreateTable(testTenant, CreateTableInput{TableNumber: "T1", Capacity: 4})
	require.NoError(t, err)
	return rs, ts, table
}

func TestReservationBufferedConflict(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	// R1: 19:00 selama 120 menit (selesai 21:00)
	r1Start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	r1, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt: r1Start, DurationMinutes: 120,
	}, "user:1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, r1.Status)

	// R2 jam 20:30 -> masih dalam effective window R1
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 2,
		ReservedAt: r1Start.Add(90 * time.Minute),
	}, "user:1")
	require.Error(t, err)
	assert.True(t, utils.IsConflict(err))

	// R2 jam 23:05 -> lewat end + buffer, sukses
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 23, 5, 0, 0, time.UTC),
	}, "user:1")
	assert.NoError(t, err)
}

func TestCapacityCheckPrecedesConflict(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	_, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2, ReservedAt: start,
	}, "")
	require.NoError(t, err)

	// Guest melebihi kapasitas DAN jadwal bentrok: yang muncul harus
	// validation error kapasitas, bukan conflict.
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 5,
		ReservedAt: start.Add(30 * time.Minute),
	}, "")
	require.Error(t, err)
	var ve *utils.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.False(t, utils.IsConflict(err))
}

func TestReservationTimeBounds(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	// Di masa lalu
	_, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt: testTime().Add(-1 * time.Hour),
	}, "")
	var ve *utils.ValidationError
	assert.ErrorAs(t, err, &ve)

	// Lebih dari 30 hari ke depan
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt: testTime().AddDate(0, 0, 31),
	}, "")
	assert.ErrorAs(t, err, &ve)

	// Tanggal kosong
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
	}, "")
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateReservationExcludesSelfFromConflict(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	r1, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2, ReservedAt: start,
	}, "")
	require.NoError(t, err)

	// Geser 30 menit: hanya bentrok dengan dirinya sendiri, harus sukses
	newStart := start.Add(30 * time.Minute)
	updated, err := rs.UpdateReservation(testTenant, r1.ID, UpdateReservationInput{
		ReservedAt: &newStart,
	})
	require.NoError(t, err)
	assert.True(t, updated.ReservedAt.Equal(newStart))
}

func TestUpdateReservationConflictsWithOther(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	_, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2, ReservedAt: start,
	}, "")
	require.NoError(t, err)

	r2, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 2,
		ReservedAt: start.Add(5 * time.Hour),
	}, "")
	require.NoError(t, err)

	// Pindah ke tengah reservasi Budi -> conflict
	conflicting := start.Add(time.Hour)
	_, err = rs.UpdateReservation(testTenant, r2.ID, UpdateReservationInput{
		ReservedAt: &conflicting,
	})
	require.Error(t, err)
	assert.True(t, utils.IsConflict(err))
}

func TestUpdateDurationExtensionChecksConflicts(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	// R1 19:00-21:00; R2 23:05 legal (lewat end + buffer R1)
	r1, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC), DurationMinutes: 120,
	}, "")
	require.NoError(t, err)
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 23, 5, 0, 0, time.UTC),
	}, "")
	require.NoError(t, err)

	// Memanjangkan R1 ke 600 menit (selesai 05:00) akan menelan start R2,
	// padahal start R1 sendiri tidak berubah -> harus conflict.
	longDuration := 600
	_, err = rs.UpdateReservation(testTenant, r1.ID, UpdateReservationInput{
		DurationMinutes: &longDuration,
	})
	require.Error(t, err)
	assert.True(t, utils.IsConflict(err))

	var reloaded models.TableReservation
	require.NoError(t, rs.DB.First(&reloaded, r1.ID).Error)
	assert.Equal(t, 120, reloaded.DurationMinutes)

	// Perpanjangan yang masih berhenti sebelum start R2 tetap boleh
	okDuration := 180
	updated, err := rs.UpdateReservation(testTenant, r1.ID, UpdateReservationInput{
		DurationMinutes: &okDuration,
	})
	require.NoError(t, err)
	assert.Equal(t, 180, updated.DurationMinutes)
}

func TestCreateLongReservationCannotSwallowLaterBooking(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	// R2 dulu yang ada di 23:05
	_, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 23, 5, 0, 0, time.UTC),
	}, "")
	require.NoError(t, err)

	// Reservasi baru 19:00 dengan durasi 600 menit menelan start R2 -> conflict
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt:      time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
		DurationMinutes: 600,
	}, "")
	require.Error(t, err)
	assert.True(t, utils.IsConflict(err))

	// Dengan durasi default yang berhenti jauh sebelum R2, slot yang sama sah
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
	}, "")
	assert.NoError(t, err)
}

func TestUpdateWithoutDateSkipsPastValidation(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	r1, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2, ReservedAt: start,
	}, "")
	require.NoError(t, err)

	// Besoknya jadwal tersimpan sudah lewat; update catatan saja tidak boleh
	// memvalidasi ulang tanggal lama.
	rs.Now = func() time.Time { return testTime().AddDate(0, 0, 2) }
	notes := "tolong siapkan kursi bayi"
	updated, err := rs.UpdateReservation(testTenant, r1.ID, UpdateReservationInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	// Tapi tanggal BARU tetap divalidasi
	pastDate := testTime().Add(-1 * time.Hour)
	_, err = rs.UpdateReservation(testTenant, r1.ID, UpdateReservationInput{ReservedAt: &pastDate})
	var ve *utils.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestReservationLifecycle(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	r1, err := rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Budi", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
	}, "")
	require.NoError(t, err)

	cancelled, err := rs.CancelReservation(testTenant, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)

	// Status terminal tidak bisa diubah lagi
	_, err = rs.CompleteReservation(testTenant, r1.ID)
	require.Error(t, err)
	assert.True(t, utils.IsConflict(err))

	// Reservasi cancelled tidak memblokir booking baru di slot yang sama
	_, err = rs.CreateReservation(testTenant, CreateReservationInput{
		TableID: table.ID, CustomerName: "Sari", GuestCount: 2,
		ReservedAt: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
	}, "")
	assert.NoError(t, err)

	// Reservasi cancelled juga tidak bisa di-update
	guest := 3
	_, err = rs.UpdateReservation(testTenant, r1.ID, UpdateReservationInput{GuestCount: &guest})
	var ve *utils.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListReservationsWindowFilter(t *testing.T) {
	rs, _, table := newReservationFixture(t)

	for hour := 13; hour <= 21; hour += 4 {
		_, err := rs.CreateReservation(testTenant, CreateReservationInput{
			TableID: table.ID, CustomerName: "Tamu", GuestCount: 2,
			ReservedAt: time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC),
		}, "")
		require.NoError(t, err)
	}

	listed, err := rs.ListReservations(testTenant, ReservationFilter{
		From: time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, listed.([]models.TableReservation), 1) // hanya yang jam 17:00
}
