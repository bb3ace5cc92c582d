package services

import (
	"time"

	"resto-ops/models"
)

const (
	// ReservationBufferMinutes memperlebar window konflik di sisi depan
	// reservasi yang sudah ada: booking yang masuk terlalu dekat sebelum /
	// sesudah start reservasi lain tetap dianggap bentrok untuk memberi
	// waktu turnover meja. Sisi setelah effective end tidak di-buffer.
	ReservationBufferMinutes = 120

	DefaultReservationDurationMinutes = 120

	MaxAdvanceBookingDays = 30
)

// ReservationsConflict adalah predikat murni deteksi bentrok interval.
// Bentrok jika start yang diusulkan jatuh sebelum effective end reservasi
// yang ada (start + durasi) DAN tidak lebih awal dari start reservasi itu
// dikurangi buffer.
func ReservationsConflict(proposedStart, existingStart time.Time, existingDurationMinutes int) bool {
	effectiveEnd := existingStart.Add(time.Duration(existingDurationMinutes) * time.Minute)
	bufferedStart := existingStart.Add(-ReservationBufferMinutes * time.Minute)
	return proposedStart.Before(effectiveEnd) && !proposedStart.Before(bufferedStart)
}

// FindConflict mencari reservasi CONFIRMED pertama yang bentrok dengan start
// yang diusulkan. excludeID mengeluarkan reservasi yang sedang di-update dari
// pengecekan terhadap dirinya sendiri (0 = tidak ada yang dikecualikan).
func FindConflict(existing []models.TableReservation, proposedStart time.Time, excludeID uint) *models.TableReservation {
	for i := range existing {
		r := &existing[i]
		if r.ID == excludeID {
			continue
		}
		if r.Status != models.ReservationConfirmed {
			continue
		}
		if ReservationsConflict(proposedStart, r.ReservedAt, r.DurationMinutes) {
			return r
		}
	}
	return nil
}

// FindWindowConflict adalah arah sebaliknya: cari reservasi CONFIRMED yang
// start-nya jatuh di dalam window [start, start+durasi) yang diusulkan.
// Dibutuhkan karena predikatnya directional; window yang memanjang (durasi
// di-update) bisa menelan start booking lain tanpa ketahuan oleh FindConflict.
func FindWindowConflict(existing []models.TableReservation, proposedStart time.Time, durationMinutes int, excludeID uint) *models.TableReservation {
	for i := range existing {
		r := &existing[i]
		if r.ID == excludeID {
			continue
		}
		if r.Status != models.ReservationConfirmed {
			continue
		}
		if ReservationsConflict(r.ReservedAt, proposedStart, durationMinutes) {
			return r
		}
	}
	return nil
}
