package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resto-ops/cache"
	"resto-ops/kds"
	"resto-ops/models"
	"resto-ops/router"
	"resto-ops/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Seed user admin, login -> token
// 1. Create table + order, meja => occupied
// 2. Dua station dapur masak -> semua ready => order ready
// 3. Reservasi slot bentrok ditolak 409
// 4. Bulk import dengan satu baris duplikat -> laporan per baris
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB(t)
	hub := kds.NewHub()
	r := router.SetupRouter(db, cache.NewMemoryStore(), hub, hub)

	token := loginTest(t, r)

	tableID := createTableTest(t, r, token)
	orderID := createOrderTest(t, r, token, tableID)
	occupyTableTest(t, r, token, tableID)
	kitchenFlowTest(t, r, token, db, orderID)
	reservationConflictTest(t, r, token, tableID)
	bulkImportTest(t, r, token)
}

// TestReservationListRejectsBadTimestamps -> typo di query filter harus
// dijawab 400, bukan diam-diam mengembalikan list tanpa filter
func TestReservationListRejectsBadTimestamps(t *testing.T) {
	db := setupIntegrationDB(t)
	hub := kds.NewHub()
	r := router.SetupRouter(db, cache.NewMemoryStore(), hub, hub)
	token := loginTest(t, r)

	code, resp := doJSON(t, r, http.MethodGet, "/reservations?from=2025-06-99", token, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad 'from', got %d, msg=%s", code, resp.Message)
	}

	code, resp = doJSON(t, r, http.MethodGet, "/reservations?to=gibberish", token, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad 'to', got %d, msg=%s", code, resp.Message)
	}

	code, _ = doJSON(t, r, http.MethodGet, "/reservations", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200 without filter, got %d", code)
	}
}

// setupIntegrationDB -> SQLite in-memory + migrate + seed admin
func setupIntegrationDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableStatusLog{},
		&models.TableReservation{},
		&models.Order{},
		&models.KitchenDisplay{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	admin := models.User{
		TenantID: 1,
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Role:     "admin",
	}
	if err := admin.SetPassword("secret123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	db.Create(&admin)

	return db
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func loginTest(t *testing.T, r *gin.Engine) string {
	code, resp := doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	if code != http.StatusOK {
		t.Fatalf("loginTest fail: code=%d, msg=%s", code, resp.Message)
	}

	var data struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Data, &data)
	if data.Token == "" {
		t.Fatalf("loginTest: token empty")
	}
	return data.Token
}

// createTableTest -> POST /tables => 201, status=available
func createTableTest(t *testing.T, r *gin.Engine, token string) uint {
	code, resp := doJSON(t, r, http.MethodPost, "/tables", token, map[string]interface{}{
		"table_number": "12",
		"capacity":     4,
		"floor":        1,
	})
	if code != http.StatusCreated {
		t.Fatalf("createTableTest: expected 201, got %d, msg=%s", code, resp.Message)
	}

	var table models.Table
	json.Unmarshal(resp.Data, &table)
	if table.Status != models.TableAvailable {
		t.Fatalf("createTableTest: expected status available, got %s", table.Status)
	}
	return table.ID
}

// createOrderTest -> POST /orders => 201, status=pending
func createOrderTest(t *testing.T, r *gin.Engine, token string, tableID uint) uint {
	code, resp := doJSON(t, r, http.MethodPost, "/orders", token, map[string]interface{}{
		"table_id": tableID,
	})
	if code != http.StatusCreated {
		t.Fatalf("createOrderTest: expected 201, got %d, msg=%s", code, resp.Message)
	}

	var order models.Order
	json.Unmarshal(resp.Data, &order)
	if order.Status != models.OrderPending {
		t.Fatalf("createOrderTest: expected status pending, got %s", order.Status)
	}
	return order.ID
}

// occupyTableTest -> dengan order aktif, meja boleh occupied
func occupyTableTest(t *testing.T, r *gin.Engine, token string, tableID uint) {
	path := fmt.Sprintf("/tables/%d/status", tableID)
	code, resp := doJSON(t, r, http.MethodPatch, path, token, map[string]string{
		"status": models.TableOccupied,
		"reason": "guests seated",
	})
	if code != http.StatusOK {
		t.Fatalf("occupyTableTest: expected 200, got %d, msg=%s", code, resp.Message)
	}
}

// kitchenFlowTest -> confirm order, dua station masak sampai ready,
// order harus ikut ready hanya setelah SEMUA station ready
func kitchenFlowTest(t *testing.T, r *gin.Engine, token string, db *gorm.DB, orderID uint) {
	code, resp := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID),
		token, map[string]string{"status": models.OrderConfirmed})
	if code != http.StatusOK {
		t.Fatalf("kitchenFlowTest confirm: got %d, msg=%s", code, resp.Message)
	}

	makeDisplay := func(station string) uint {
		code, resp := doJSON(t, r, http.MethodPost, "/kitchen/displays", token, map[string]interface{}{
			"order_id":       orderID,
			"station_name":   station,
			"priority":       3,
			"estimated_time": 20,
		})
		if code != http.StatusCreated {
			t.Fatalf("kitchenFlowTest create display %s: got %d, msg=%s", station, code, resp.Message)
		}
		var display models.KitchenDisplay
		json.Unmarshal(resp.Data, &display)
		return display.ID
	}
	setDisplay := func(displayID uint, status string) {
		path := fmt.Sprintf("/kitchen/displays/%d/status", displayID)
		code, resp := doJSON(t, r, http.MethodPatch, path, token, map[string]string{"status": status})
		if code != http.StatusOK {
			t.Fatalf("kitchenFlowTest display %d -> %s: got %d, msg=%s", displayID, status, code, resp.Message)
		}
	}
	orderStatus := func() string {
		var order models.Order
		if err := db.First(&order, orderID).Error; err != nil {
			t.Fatalf("kitchenFlowTest reload order: %v", err)
		}
		return order.Status
	}

	grillID := makeDisplay("grill")
	fryID := makeDisplay("fry")

	setDisplay(grillID, models.OrderPreparing)
	if got := orderStatus(); got != models.OrderPreparing {
		t.Fatalf("kitchenFlowTest: expected order preparing after first station, got %s", got)
	}

	setDisplay(grillID, models.OrderReady)
	if got := orderStatus(); got != models.OrderPreparing {
		t.Fatalf("kitchenFlowTest: order must stay preparing while fry is pending, got %s", got)
	}

	setDisplay(fryID, models.OrderPreparing)
	setDisplay(fryID, models.OrderReady)
	if got := orderStatus(); got != models.OrderReady {
		t.Fatalf("kitchenFlowTest: expected order ready after all stations, got %s", got)
	}
	log.Printf("kitchenFlowTest: order %d ready", orderID)
}

// reservationConflictTest -> booking kedua di dalam buffered window => 409
func reservationConflictTest(t *testing.T, r *gin.Engine, token string, tableID uint) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)

	code, resp := doJSON(t, r, http.MethodPost, "/reservations", token, map[string]interface{}{
		"table_id":      tableID,
		"customer_name": "Budi",
		"guest_count":   2,
		"reserved_at":   start.Format(time.RFC3339),
	})
	if code != http.StatusCreated {
		t.Fatalf("reservationConflictTest create: got %d, msg=%s", code, resp.Message)
	}

	code, resp = doJSON(t, r, http.MethodPost, "/reservations", token, map[string]interface{}{
		"table_id":      tableID,
		"customer_name": "Sari",
		"guest_count":   2,
		"reserved_at":   start.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if code != http.StatusConflict {
		t.Fatalf("reservationConflictTest: expected 409, got %d, msg=%s", code, resp.Message)
	}
	if resp.Status {
		t.Fatalf("reservationConflictTest: expected status=false on conflict")
	}
}

// bulkImportTest -> baris duplikat gagal sendiri, sisanya tetap masuk
func bulkImportTest(t *testing.T, r *gin.Engine, token string) {
	code, resp := doJSON(t, r, http.MethodPost, "/bulk/tables/import", token, map[string]interface{}{
		"rows": []map[string]interface{}{
			{"table_number": "B1", "capacity": 2},
			{"table_number": "B1", "capacity": 4},
			{"table_number": "B2", "capacity": 4},
		},
	})
	if code != http.StatusOK {
		t.Fatalf("bulkImportTest: got %d, msg=%s", code, resp.Message)
	}

	var result struct {
		Summary struct {
			Total      int `json:"total"`
			Successful int `json:"successful"`
			Failed     int `json:"failed"`
			Conflicts  int `json:"conflicts"`
		} `json:"summary"`
	}
	json.Unmarshal(resp.Data, &result)
	if result.Summary.Total != 3 || result.Summary.Successful != 2 || result.Summary.Failed != 1 {
		t.Fatalf("bulkImportTest: unexpected summary %+v", result.Summary)
	}
	if result.Summary.Conflicts != 1 {
		t.Fatalf("bulkImportTest: expected 1 conflict, got %d", result.Summary.Conflicts)
	}
}
