// Package kds menampung fanout realtime untuk kitchen display & floor staff:
// hub websocket (role + tenant scoped) plus mirror opsional ke message broker.
package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"resto-ops/utils"
)

// Event types
const (
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventTableDelete       = "table_delete"
	EventReservationCreate = "reservation_create"
	EventReservationUpdate = "reservation_update"
	EventOrderUpdate       = "order_update"
	EventKitchenUpdate     = "kitchen_update"
	EventBulkUpdate        = "bulk_update"
	EventDashboardUpdate   = "dashboard_update"
)

// Role scope per jenis event. Table/reservation untuk floor crew, kitchen
// untuk dapur; admin selalu ikut.
var (
	FloorRoles   = []string{"staff", "admin", "cleaner"}
	KitchenRoles = []string{"chef", "staff", "admin"}
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher adalah kontrak fanout yang dipakai service layer. Delivery tanpa
// garansi: kegagalan kirim hanya di-log, tidak pernah menggagalkan mutasi.
type Publisher interface {
	Publish(roles []string, tenantID uint, event string, payload interface{})
}

type clientInfo struct {
	role     string
	tenantID uint
}

// Hub menampung koneksi websocket client (chef, staff, admin, cleaner)
// dan menyiarkan event hanya ke role + tenant yang sesuai.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]clientInfo
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]clientInfo)}
}

// Register -> daftarkan koneksi dengan role dan tenant
func (h *Hub) Register(conn *websocket.Conn, role string, tenantID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = clientInfo{role: role, tenantID: tenantID}
}

// Unregister -> lepaskan koneksi saat disconnect
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount -> jumlah koneksi aktif (untuk endpoint monitoring)
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish menyiarkan event ke client dengan tenant sama dan role yang masuk
// daftar (roles nil = semua role). Koneksi yang gagal ditulis langsung
// dilepas supaya tidak mengganjal broadcast berikutnya.
func (h *Hub) Publish(roles []string, tenantID uint, event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		utils.ErrorLogger.Printf("kds: error marshaling %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, info := range h.clients {
		if info.tenantID != tenantID {
			continue
		}
		if roles != nil && !roleAllowed(roles, info.role) {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("kds: dropping %s client after write error: %v", info.role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func roleAllowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Fanout menggabungkan beberapa publisher (hub + broker) jadi satu.
type Fanout []Publisher

func (f Fanout) Publish(roles []string, tenantID uint, event string, payload interface{}) {
	for _, p := range f {
		p.Publish(roles, tenantID, event, payload)
	}
}
