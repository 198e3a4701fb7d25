package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "hostel-backend/internal/config"
	h "hostel-backend/internal/http/handlers"
	"hostel-backend/internal/repositories/memory"
	"hostel-backend/internal/services"
	"hostel-backend/internal/utils"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	token  string
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	auth := services.AuthService{Users: st, Secret: []byte("test-secret"), TTL: time.Hour}
	if err := auth.EnsureAdmin(context.Background(), "Warden", "9876500000", "correct-horse"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	hd := &h.Handler{
		Rooms:       st,
		Hostlers:    st,
		Payments:    st,
		Auth:        auth,
		Clock:       utils.FixedClock{At: now},
		PaymentLink: "https://pay.example.com",
	}
	srv := &testServer{t: t, engine: NewRouter(intconfig.Env{}, hd), store: st}

	// tokens are checked against the wall clock, so sign with it
	token, _, err := auth.Login(context.Background(), "9876500000", "correct-horse", time.Now())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	srv.token = token
	return srv
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
	Details   []struct {
		Field string `json:"field"`
		Rule  string `json:"rule"`
	} `json:"details"`
}

func (s *testServer) createRoom(number string, price int64, beds ...string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/rooms", gin.H{"room_number": number, "bed_numbers": beds, "price": price, "toilet": "Yes"})
	expectStatus(s.t, w, http.StatusCreated)
	return decode[struct {
		ID string `json:"id"`
	}](s.t, w).ID
}

func (s *testServer) createHostler(name, phone, aadhar, roomID, bed, joined string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/hostlers", gin.H{
		"name": name, "phone": phone, "aadhar": aadhar,
		"room_id": roomID, "bed_no": bed, "joining_date": joined,
	})
	expectStatus(s.t, w, http.StatusCreated)
	return decode[struct {
		ID string `json:"id"`
	}](s.t, w).ID
}

func TestHealthIsPublicAndCarriesRequestID(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	srv.token = ""

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)

	expectStatus(t, w, http.StatusOK)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	srv.token = ""
	w := srv.do(http.MethodGet, "/api/rooms", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	srv.token = "not-a-jwt"
	w = srv.do(http.MethodGet, "/api/rooms", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	srv.token = ""

	w := srv.do(http.MethodPost, "/api/auth/login", gin.H{"phone": "9876500000", "password": "nope"})
	expectStatus(t, w, http.StatusUnauthorized)
	if body := decode[errorBody](t, w); body.Code != "invalid_credentials" {
		t.Fatalf("unexpected code %q", body.Code)
	}

	w = srv.do(http.MethodPost, "/api/auth/login", gin.H{"phone": "9876500000"})
	expectStatus(t, w, http.StatusBadRequest)
	body := decode[errorBody](t, w)
	if len(body.Details) != 1 || body.Details[0].Field != "password" || body.Details[0].Rule != "required" {
		t.Fatalf("expected a password detail, got %+v", body.Details)
	}
}

func TestRegisterHostlerFlow(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 16))
	roomID := srv.createRoom("101", 6000, "A", "B")
	hostlerID := srv.createHostler("Asha", "9876543210", "123412341234", roomID, "A", "2025-05-15")

	w := srv.do(http.MethodGet, "/api/rooms/"+roomID+"/beds/vacant", nil)
	expectStatus(t, w, http.StatusOK)
	beds := decode[[]struct {
		Number string `json:"bed_number"`
	}](t, w)
	if len(beds) != 1 || beds[0].Number != "B" {
		t.Fatalf("expected only bed B vacant, got %+v", beds)
	}

	w = srv.do(http.MethodGet, "/api/hostlers/"+hostlerID, nil)
	expectStatus(t, w, http.StatusOK)
	got := decode[struct {
		Phone   string `json:"phone"`
		Status  string `json:"status"`
		Billing struct {
			DueDate       string `json:"due_date"`
			MonthsPending int    `json:"months_pending"`
			PendingAmount int64  `json:"pending_amount"`
		} `json:"billing"`
	}](t, w)
	if got.Phone != "+919876543210" || got.Status != "Pending" {
		t.Fatalf("unexpected hostler %+v", got)
	}
	if got.Billing.DueDate != "2025-06-15" || got.Billing.MonthsPending != 2 || got.Billing.PendingAmount != 12000 {
		t.Fatalf("unexpected billing %+v", got.Billing)
	}

	// the bed is taken now
	w = srv.do(http.MethodPost, "/api/hostlers", gin.H{
		"name": "Ravi", "phone": "9000000001", "aadhar": "999988887777",
		"room_id": roomID, "bed_no": "A", "joining_date": "2025-06-01",
	})
	expectStatus(t, w, http.StatusConflict)
	if body := decode[errorBody](t, w); body.Code != "bed_unavailable" || body.RequestID == "" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestHostlerValidationErrors(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	roomID := srv.createRoom("101", 6000, "1")

	w := srv.do(http.MethodPost, "/api/hostlers", gin.H{
		"name": "Asha", "phone": "9876543210", "aadhar": "1234",
		"room_id": roomID, "bed_no": "1", "joining_date": "2025-05-15",
	})
	expectStatus(t, w, http.StatusBadRequest)
	if body := decode[errorBody](t, w); body.Code != "invalid_aadhar" {
		t.Fatalf("unexpected code %q", body.Code)
	}

	w = srv.do(http.MethodPost, "/api/hostlers", gin.H{
		"name": "Asha", "phone": "9876543210", "aadhar": "123412341234",
		"room_id": roomID, "bed_no": "1", "joining_date": "15/05/2025",
	})
	expectStatus(t, w, http.StatusBadRequest)
	body := decode[errorBody](t, w)
	if body.Code != "invalid_payload" || len(body.Details) != 1 || body.Details[0].Field != "joining_date" {
		t.Fatalf("unexpected error body %+v", body)
	}

	w = srv.do(http.MethodGet, "/api/hostlers/missing", nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestPaymentApproveAndReceipt(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	roomID := srv.createRoom("101", 6000, "1")
	hostlerID := srv.createHostler("Asha", "9876543210", "123412341234", roomID, "1", "2025-05-15")

	w := srv.do(http.MethodPost, "/api/payments", gin.H{"hostler_id": hostlerID, "amount": 12000, "num_payments": 2, "payment_date": "2025-06-20"})
	expectStatus(t, w, http.StatusCreated)
	paymentID := decode[struct {
		ID string `json:"id"`
	}](t, w).ID

	w = srv.do(http.MethodGet, "/api/payments/"+paymentID+"/receipt", nil)
	expectStatus(t, w, http.StatusConflict)

	w = srv.do(http.MethodPut, "/api/payments/"+paymentID+"/approve", nil)
	expectStatus(t, w, http.StatusOK)
	approved := decode[struct {
		Payment struct {
			Status string `json:"status"`
		} `json:"payment"`
		Hostler struct {
			NextPaymentDate string `json:"next_payment_date"`
			Status          string `json:"status"`
		} `json:"hostler"`
	}](t, w)
	if approved.Payment.Status != "Paid" || approved.Hostler.NextPaymentDate != "2025-08-15" || approved.Hostler.Status != "Paid" {
		t.Fatalf("unexpected approval %+v", approved)
	}

	w = srv.do(http.MethodPut, "/api/payments/"+paymentID+"/approve", nil)
	expectStatus(t, w, http.StatusConflict)

	w = srv.do(http.MethodGet, "/api/payments/"+paymentID+"/receipt", nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "RECEIPT_") {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}

	w = srv.do(http.MethodGet, "/api/reports/payments?from=2025-06-01&to=2025-06-30", nil)
	expectStatus(t, w, http.StatusOK)
	rep := decode[struct {
		Count        int   `json:"count"`
		PaidCount    int   `json:"paid_count"`
		TotalRevenue int64 `json:"total_revenue"`
	}](t, w)
	if rep.PaidCount != 1 || rep.TotalRevenue != 12000 {
		t.Fatalf("unexpected report %+v", rep)
	}

	w = srv.do(http.MethodGet, "/api/reports/payments?from=2025-07-01&to=2025-06-01", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestRoomEditRefusesOccupiedBed(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	roomID := srv.createRoom("101", 6000, "1", "2")
	srv.createHostler("Asha", "9876543210", "123412341234", roomID, "2", "2025-05-15")

	w := srv.do(http.MethodPut, "/api/rooms/"+roomID, gin.H{"bed_numbers": []string{"1"}})
	expectStatus(t, w, http.StatusConflict)
	if body := decode[errorBody](t, w); body.Code != "bed_occupied" {
		t.Fatalf("unexpected code %q", body.Code)
	}

	w = srv.do(http.MethodPut, "/api/rooms/"+roomID, gin.H{"price": 7000, "bed_count": 3})
	expectStatus(t, w, http.StatusOK)
	room := decode[struct {
		Price        int64  `json:"price"`
		BedCount     int    `json:"bed_count"`
		OccupiedBeds int    `json:"occupied_beds"`
		Status       string `json:"status"`
	}](t, w)
	if room.Price != 7000 || room.BedCount != 3 || room.OccupiedBeds != 1 || room.Status != "Available" {
		t.Fatalf("unexpected room %+v", room)
	}
}

func TestDashboardDuesAndMaintenance(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	roomID := srv.createRoom("101", 6000, "1", "2")
	srv.createHostler("Asha", "9876543210", "123412341234", roomID, "1", "2025-05-15")

	w := srv.do(http.MethodGet, "/api/dashboard", nil)
	expectStatus(t, w, http.StatusOK)
	dash := decode[services.Dashboard](t, w)
	if dash.TotalBeds != 2 || dash.OccupiedBeds != 1 || dash.PendingPayments != 1 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}

	w = srv.do(http.MethodGet, "/api/dues", nil)
	expectStatus(t, w, http.StatusOK)
	dues := decode[[]struct {
		Name         string `json:"name"`
		WhatsAppLink string `json:"whatsapp_link"`
	}](t, w)
	if len(dues) != 1 || !strings.HasPrefix(dues[0].WhatsAppLink, "https://wa.me/919876543210?text=") {
		t.Fatalf("unexpected dues %+v", dues)
	}

	w = srv.do(http.MethodPost, "/api/maintenance/reconcile?repair=maybe", nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = srv.do(http.MethodPost, "/api/maintenance/reconcile", nil)
	expectStatus(t, w, http.StatusOK)
	rep := decode[services.ReconcileReport](t, w)
	if len(rep.Findings) != 0 || rep.RoomsChecked != 1 {
		t.Fatalf("unexpected reconcile report %+v", rep)
	}

	w = srv.do(http.MethodPost, "/api/maintenance/refresh-status", nil)
	expectStatus(t, w, http.StatusOK)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, utils.Date(2025, 7, 1))
	w := srv.do(http.MethodGet, "/api/nope", nil)
	expectStatus(t, w, http.StatusNotFound)
}
