package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"resto-ops/models"
)

func TestReservationsConflictBufferedWindow(t *testing.T) {
	// Reservasi eksisting: 19:00 selama 120 menit (effective end 21:00),
	// buffer 120 menit di sisi depan (window konflik mulai 17:00).
	existingStart := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	day := existingStart.Truncate(24 * time.Hour)

	cases := []struct {
		name     string
		proposed time.Time
		conflict bool
	}{
		{"di tengah reservasi", day.Add(20*time.Hour + 30*time.Minute), true},
		{"tepat di start", day.Add(19 * time.Hour), true},
		{"di dalam buffer depan", day.Add(18 * time.Hour), true},
		{"tepat di awal buffer", day.Add(17 * time.Hour), true},
		{"sebelum buffer", day.Add(16*time.Hour + 59*time.Minute), false},
		{"tepat di effective end", day.Add(21 * time.Hour), false},
		{"jauh setelah selesai", day.Add(23*time.Hour + 5*time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReservationsConflict(tc.proposed, existingStart, 120)
			assert.Equal(t, tc.conflict, got)
		})
	}
}

func TestFindWindowConflictCatchesSwallowedStart(t *testing.T) {
	// Booking lain di 23:05; window 19:00 + 120 menit berhenti di 21:00 dan
	// tidak menyentuhnya, window 19:00 + 600 menit (selesai 05:00) menelannya.
	windowStart := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	existing := []models.TableReservation{
		{ID: 3, Status: models.ReservationConfirmed,
			ReservedAt: time.Date(2025, 6, 1, 23, 5, 0, 0, time.UTC), DurationMinutes: 120},
	}

	assert.Nil(t, FindWindowConflict(existing, windowStart, 120, 0))

	conflict := FindWindowConflict(existing, windowStart, 600, 0)
	assert.NotNil(t, conflict)
	assert.Equal(t, uint(3), conflict.ID)

	// Dirinya sendiri tetap dikecualikan
	assert.Nil(t, FindWindowConflict(existing, windowStart, 600, 3))
}

func TestFindConflictSkipsSelfAndNonConfirmed(t *testing.T) {
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	existing := []models.TableReservation{
		{ID: 1, Status: models.ReservationCancelled, ReservedAt: start, DurationMinutes: 120},
		{ID: 2, Status: models.ReservationConfirmed, ReservedAt: start, DurationMinutes: 120},
	}

	// Reservasi cancelled tidak pernah bentrok
	conflict := FindConflict(existing[:1], start.Add(30*time.Minute), 0)
	assert.Nil(t, conflict)

	// Reservasi confirmed bentrok...
	conflict = FindConflict(existing, start.Add(30*time.Minute), 0)
	assert.NotNil(t, conflict)
	assert.Equal(t, uint(2), conflict.ID)

	// ...kecuali saat dia sendiri yang sedang di-update
	conflict = FindConflict(existing, start.Add(30*time.Minute), 2)
	assert.Nil(t, conflict)
}
