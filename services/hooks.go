package services

import (
	"fmt"

	"resto-ops/cache"
	"resto-ops/kds"
)

// notifyChange menjalankan dua langkah post-commit yang independen setelah
// mutasi berhasil: invalidasi cache dulu (sinkron, supaya read berikutnya
// tidak kebagian data basi), baru fanout event. Store / events boleh nil,
// misalnya di test yang hanya peduli state machine.
func notifyChange(store cache.Store, events kds.Publisher, tenantID uint, patterns []string, roles []string, event string, payload interface{}) {
	if store != nil {
		for _, p := range patterns {
			store.Invalidate(p)
		}
	}
	if events != nil {
		events.Publish(roles, tenantID, event, payload)
	}
}

// Prefix key cache per entity, selalu mengandung tenant supaya satu pattern
// bisa membersihkan semua varian filter milik tenant itu.
func tableKeyPrefix(tenantID uint) string { return fmt.Sprintf("tables:%d", tenantID) }

func reservationKeyPrefix(tenantID uint) string { return fmt.Sprintf("reservations:%d", tenantID) }

func orderKeyPrefix(tenantID uint) string { return fmt.Sprintf("orders:%d", tenantID) }

func kitchenKeyPrefix(tenantID uint) string { return fmt.Sprintf("kitchen:%d", tenantID) }
