package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/adapter/session"
	"github.com/YelzhanWeb/kasir/internal/app/apptest"
	"github.com/YelzhanWeb/kasir/internal/app/catalog"
	"github.com/YelzhanWeb/kasir/internal/app/dashboard"
	"github.com/YelzhanWeb/kasir/internal/app/order"
	"github.com/YelzhanWeb/kasir/internal/app/staff"
	"github.com/YelzhanWeb/kasir/internal/config"
	"github.com/YelzhanWeb/kasir/internal/domain"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	store   *apptest.Store
	pub     *apptest.Publisher
	pinger  *fakePinger
	nasi    *domain.MenuItem
	teh     *domain.MenuItem
	table   *domain.Table
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := apptest.NewStore()
	pub := &apptest.Publisher{}
	lgr := logger.Nop()

	staffSvc := staff.NewService(store.UserRepo(), lgr, bcrypt.MinCost)
	for _, in := range []domain.UserInput{
		{Email: "admin@resto.id", Name: "Budi", Role: "ADMIN", Password: "admin-pass"},
		{Email: "kasir@resto.id", Name: "Siti", Role: "KASIR", Password: "kasir-pass"},
	} {
		if _, err := staffSvc.CreateUser(context.Background(), in); err != nil {
			t.Fatalf("CreateUser(%s) error = %v", in.Email, err)
		}
	}

	pinger := &fakePinger{}
	ts := &testServer{
		store:  store,
		pub:    pub,
		pinger: pinger,
		nasi:   store.AddMenuItem("Nasi Goreng", "Food", 20000),
		teh:    store.AddMenuItem("Es Teh", "Drinks", 15000),
		table:  store.AddTable("T1", domain.TableAvailable),
	}
	ts.handler = NewRouter(RouterDeps{
		Orders:    order.NewService(store.OrderRepo(), store.MenuRepo(), pub, lgr, domain.PolicyStrict, 0),
		Dashboard: dashboard.NewService(store.OrderRepo(), store.MenuRepo(), store.TableRepo(), lgr, 0),
		Catalog:   catalog.NewService(store.MenuRepo(), store.TableRepo(), pub, lgr),
		Staff:     staffSvc,
		Sessions:  session.NewManager(config.SessionConfig{
			Secret:     strings.Repeat("k", 32),
			CookieName: "kasir_session",
			MaxAge:     time.Hour,
		}),
		DB:     pinger,
		Logger: lgr,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login(%s) status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "kasir_session" {
			return c
		}
	}
	t.Fatalf("login(%s) set no session cookie", email)
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestRouterAccessControl(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@resto.id", "admin-pass")
	kasir := ts.login(t, "kasir@resto.id", "kasir-pass")

	tests := []struct {
		name   string
		method string
		path   string
		cookie *http.Cookie
		want   int
	}{
		{name: "dashboardAnonymous", method: http.MethodGet, path: "/dashboard", want: http.StatusUnauthorized},
		{name: "dashboardKasir", method: http.MethodGet, path: "/dashboard", cookie: kasir, want: http.StatusOK},
		{name: "ordersListAnonymous", method: http.MethodGet, path: "/orders", want: http.StatusUnauthorized},
		{name: "ordersListKasir", method: http.MethodGet, path: "/orders", cookie: kasir, want: http.StatusOK},
		{name: "usersKasir", method: http.MethodGet, path: "/users", cookie: kasir, want: http.StatusForbidden},
		{name: "usersAdmin", method: http.MethodGet, path: "/users", cookie: admin, want: http.StatusOK},
		{name: "reportKasir", method: http.MethodGet, path: "/reports/daily.csv", cookie: kasir, want: http.StatusForbidden},
		{name: "menuAnonymous", method: http.MethodGet, path: "/menu", want: http.StatusOK},
		{name: "tablesAnonymous", method: http.MethodGet, path: "/tables", want: http.StatusOK},
		{name: "meAnonymous", method: http.MethodGet, path: "/auth/me", want: http.StatusUnauthorized},
		{name: "meKasir", method: http.MethodGet, path: "/auth/me", cookie: kasir, want: http.StatusOK},
		{name: "tamperedCookie", method: http.MethodGet, path: "/dashboard",
			cookie: &http.Cookie{Name: "kasir_session", Value: "forged"}, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tt.cookie != nil {
				cookies = append(cookies, tt.cookie)
			}
			rec := ts.do(t, tt.method, tt.path, "", cookies...)
			if rec.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d (body %s)", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/login", `{"email":"admin@resto.id","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := `{"table_id":` + itoa(ts.table.ID) + `,"items":[` +
		`{"menu_item_id":` + itoa(ts.nasi.ID) + `,"quantity":2},` +
		`{"menu_item_id":` + itoa(ts.teh.ID) + `,"quantity":1,"note":"less sugar"}]}`
	rec := ts.do(t, http.MethodPost, "/orders", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response lacks a request id")
	}

	var resp struct {
		Order map[string]interface{} `json:"order"`
	}
	decode(t, rec, &resp)
	if resp.Order["total"] != float64(55000) || resp.Order["status"] != "pending" {
		t.Errorf("order = %v", resp.Order)
	}
	if _, ok := resp.Order["items"]; ok {
		t.Error("created order is returned without items")
	}
	if resp.Order["customer_name"] != domain.DefaultCustomerName {
		t.Errorf("customer_name = %v", resp.Order["customer_name"])
	}

	table, _ := ts.store.Table(ts.table.ID)
	if table.Status != domain.TableOccupied {
		t.Errorf("table status = %q, want occupied", table.Status)
	}
}

func TestCreateOrderEndpointErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
		wantError string
	}{
		{name: "malformedJSON", body: `{"items":`, wantCode: http.StatusBadRequest},
		{name: "noItems", body: `{"items":[]}`, wantCode: http.StatusBadRequest, wantField: "items", wantError: "required"},
		{name: "quantityTooLarge", body: `{"items":[{"menu_item_id":1,"quantity":100}]}`, wantCode: http.StatusBadRequest,
			wantField: "items[0].quantity", wantError: "out_of_range"},
		{name: "unknownMenuItem", body: `{"items":[{"menu_item_id":999,"quantity":1}]}`, wantCode: http.StatusBadRequest,
			wantField: "items[0].menu_item_id", wantError: "menu_item_not_found"},
		{name: "unknownTable", body: `{"table_id":404,"items":[{"menu_item_id":` + itoa(ts.nasi.ID) + `,"quantity":1}]}`, wantCode: http.StatusBadRequest,
			wantField: "table_id", wantError: "table_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/orders", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp ErrorResponse
			decode(t, rec, &resp)
			if resp.Error == "" {
				t.Error("error message is empty")
			}
			if tt.wantField == "" {
				return
			}
			if len(resp.Errors) == 0 || resp.Errors[0].Field != tt.wantField || resp.Errors[0].Code != tt.wantError {
				t.Errorf("errors = %+v, want %s/%s", resp.Errors, tt.wantField, tt.wantError)
			}
		})
	}

	if n := ts.store.OrderCount(); n != 0 {
		t.Errorf("orders stored = %d, want 0", n)
	}
}

func TestCreateOrderEndpointStorageFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.store.FailOrderCreate = errors.New("connection refused")

	rec := ts.do(t, http.MethodPost, "/orders", `{"items":[{"menu_item_id":`+itoa(ts.nasi.ID)+`,"quantity":1}]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("storage error leaked to client")
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)
	kasir := ts.login(t, "kasir@resto.id", "kasir-pass")

	rec := ts.do(t, http.MethodPost, "/orders",
		`{"table_id":`+itoa(ts.table.ID)+`,"items":[{"menu_item_id":`+itoa(ts.nasi.ID)+`,"quantity":1}]}`)
	var created struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	decode(t, rec, &created)
	id := itoa(created.Order.ID)

	rec = ts.do(t, http.MethodPut, "/orders", `{"id":`+id+`,"status":"paid"}`, kasir)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("paid: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if table, _ := ts.store.Table(ts.table.ID); table.Status != domain.TableAvailable {
		t.Errorf("table status = %q, want available", table.Status)
	}

	// strict policy: paid is final
	rec = ts.do(t, http.MethodPut, "/orders", `{"id":`+id+`,"status":"pending"}`, kasir)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("paid->pending status = %d, want 400", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/orders/"+id+"/history", "", kasir)
	var history struct {
		History []statusLogResponse `json:"history"`
	}
	decode(t, rec, &history)
	if len(history.History) != 2 || history.History[1].ChangedBy != "kasir@resto.id" {
		t.Errorf("history = %+v", history.History)
	}

	last := ts.pub.Orders[len(ts.pub.Orders)-1]
	if last.ChangedBy != "kasir@resto.id" || last.OldStatus != domain.StatusPending {
		t.Errorf("status event = %+v", last)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	ts := newTestServer(t)
	kasir := ts.login(t, "kasir@resto.id", "kasir-pass")
	ts.store.AddOrder(&domain.Order{Status: domain.StatusPaid, Total: 42000, CreatedAt: time.Now(), UpdatedAt: time.Now()})
	ts.store.AddOrder(&domain.Order{Status: domain.StatusPreparing, Total: 10000, CreatedAt: time.Now(), UpdatedAt: time.Now()})

	rec := ts.do(t, http.MethodGet, "/dashboard", "", kasir)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		MenuItems []json.RawMessage `json:"menuItems"`
		Tables    []json.RawMessage `json:"tables"`
		Orders    []json.RawMessage `json:"orders"`
		Summary   summaryResponse   `json:"summary"`
	}
	decode(t, rec, &resp)

	want := summaryResponse{OpenOrders: 1, RevenueToday: 42000, MenuCount: 2, AvailableTables: 1}
	if resp.Summary != want {
		t.Errorf("summary = %+v, want %+v", resp.Summary, want)
	}
	if len(resp.MenuItems) != 2 || len(resp.Tables) != 1 || len(resp.Orders) != 2 {
		t.Errorf("got %d menu items, %d tables, %d orders", len(resp.MenuItems), len(resp.Tables), len(resp.Orders))
	}
}

func TestDailyReportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@resto.id", "admin-pass")
	day := time.Date(2026, 3, 14, 19, 30, 0, 0, time.Local)
	tableID := ts.table.ID
	ts.store.AddOrder(&domain.Order{
		TableID: &tableID, CustomerName: "Andi", PaymentMethod: "qris",
		Status: domain.StatusPaid, Total: 55000, CreatedAt: day, UpdatedAt: day,
	})
	ts.store.AddOrder(&domain.Order{
		CustomerName: "Rina", PaymentMethod: "cash",
		Status: domain.StatusServed, Total: 9000, CreatedAt: day, UpdatedAt: day,
	})

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantRows int
	}{
		{name: "isoDate", query: "?date=2026-03-14", wantCode: http.StatusOK, wantRows: 1},
		{name: "slashDate", query: "?date=03/14/2026", wantCode: http.StatusOK, wantRows: 1},
		{name: "otherDay", query: "?date=2026-03-15", wantCode: http.StatusOK, wantRows: 0},
		{name: "garbage", query: "?date=not-a-date", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/reports/daily.csv"+tt.query, "", admin)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
				t.Errorf("Content-Type = %q", ct)
			}
			lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
			if lines[0] != "order_id,table_id,customer_name,payment_method,total,created_at" {
				t.Errorf("header = %q", lines[0])
			}
			if got := len(lines) - 1; got != tt.wantRows {
				t.Errorf("rows = %d, want %d", got, tt.wantRows)
			}
			if tt.wantRows == 1 && !strings.Contains(lines[1], ",Andi,qris,55000,") {
				t.Errorf("row = %q", lines[1])
			}
		})
	}
}

func TestMenuAndTableEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@resto.id", "admin-pass")
	kasir := ts.login(t, "kasir@resto.id", "kasir-pass")

	rec := ts.do(t, http.MethodPost, "/menu", `{"name":"Kopi Susu","category":"Drinks","price":18000}`, kasir)
	if rec.Code != http.StatusForbidden {
		t.Errorf("kasir create menu status = %d, want 403", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/menu", `{"name":"Kopi Susu","category":"Drinks","price":18000}`, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create menu status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		MenuItem menuItemResponse `json:"menuItem"`
	}
	decode(t, rec, &created)
	if !created.MenuItem.IsAvailable || created.MenuItem.Price != 18000 {
		t.Errorf("menu item = %+v", created.MenuItem)
	}

	rec = ts.do(t, http.MethodDelete, "/menu", `{"id":`+itoa(created.MenuItem.ID)+`}`, admin)
	if rec.Code != http.StatusOK {
		t.Errorf("delete menu status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPut, "/tables", `{"id":`+itoa(ts.table.ID)+`,"status":"dirty"}`, kasir)
	if rec.Code != http.StatusOK {
		t.Fatalf("update table status = %d, body = %s", rec.Code, rec.Body.String())
	}
	table, _ := ts.store.Table(ts.table.ID)
	if table.Status != domain.TableDirty || table.Label != "T1" {
		t.Errorf("table = %+v", table)
	}
	if keys := ts.pub.Keys(); len(keys) != 1 || keys[0] != "table.status.dirty" {
		t.Errorf("published = %v", keys)
	}

	rec = ts.do(t, http.MethodPut, "/tables", `{"id":`+itoa(ts.table.ID)+`,"status":"broken"}`, kasir)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid table status = %d, want 400", rec.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@resto.id", "admin-pass")
	self, _ := ts.store.User("admin@resto.id")
	other, _ := ts.store.User("kasir@resto.id")

	tests := []struct {
		name      string
		method    string
		body      string
		wantCode  int
		wantField string
		wantError string
	}{
		{name: "passwordTooLong", method: http.MethodPost, wantCode: http.StatusBadRequest, wantField: "password", wantError: "too_long",
			body: `{"email":"chef@resto.id","name":"Chef","role":"KASIR","password":"` + strings.Repeat("x", 80) + `"}`},
		{name: "deleteSelf", method: http.MethodDelete, body: `{"id":` + itoa(self.ID) + `}`, wantCode: http.StatusBadRequest,
			wantField: "id", wantError: "invalid_value"},
		{name: "deleteOther", method: http.MethodDelete, body: `{"id":` + itoa(other.ID) + `}`, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, "/users", tt.body, admin)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantField == "" {
				return
			}
			var resp ErrorResponse
			decode(t, rec, &resp)
			if len(resp.Errors) == 0 || resp.Errors[0].Field != tt.wantField || resp.Errors[0].Code != tt.wantError {
				t.Errorf("errors = %+v, want %s/%s", resp.Errors, tt.wantField, tt.wantError)
			}
		})
	}

	if _, ok := ts.store.User("admin@resto.id"); !ok {
		t.Error("admin deleted their own account")
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}
	ts.pinger.err = errors.New("pool closed")
	if rec := ts.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequestIDMiddlewareKeepsIncomingID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-42" || rec.Header().Get(RequestIDHeader) != "req-42" {
		t.Errorf("request id = %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
