// Package cache menyediakan key-value store ber-TTL dengan invalidasi
// berbasis pola untuk read path engine. Store hanya memegang salinan derived
// yang disposable: isinya boleh dibuang kapan saja tanpa kehilangan data.
package cache

import "time"

// Tier TTL berdasarkan volatilitas data.
const (
	TableListTTL       = 300 * time.Second
	TableDetailTTL     = 120 * time.Second
	ReservationListTTL = 60 * time.Second
	AnalyticsTTL       = 600 * time.Second
	LiveCounterTTL     = 30 * time.Second
)

type Stats struct {
	TotalRequests  int64   `json:"total_requests"`
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	HitRatePercent float64 `json:"hit_rate_percent"`
	EntryCount     int     `json:"entry_count"`
}

// Store adalah kontrak cache yang bisa disubstitusi (in-memory, redis).
//
// Fetch: kalau entry masih hidup, kembalikan dan hitung hit; kalau tidak,
// panggil loader, simpan hasilnya dengan TTL yang diminta, hitung miss.
// Error dari loader tidak di-cache.
//
// Invalidate menghapus semua key yang MENGANDUNG substring pattern, dan
// harus dipanggil sinkron sebelum operasi mutasi return supaya read
// berikutnya tidak pernah melihat data basi.
type Store interface {
	Fetch(key string, ttl time.Duration, loader func() (interface{}, error)) (interface{}, error)
	Invalidate(pattern string) int
	Stats() Stats
	Flush()
}
