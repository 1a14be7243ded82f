package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type DashboardHandler struct {
	service interfaces.DashboardService
	logger  logger.Logger
}

func NewDashboardHandler(service interfaces.DashboardService, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

type summaryResponse struct {
	OpenOrders      int   `json:"openOrders"`
	RevenueToday    int64 `json:"revenueToday"`
	MenuCount       int   `json:"menuCount"`
	AvailableTables int   `json:"availableTables"`
}

type dashboardResponse struct {
	MenuItems []menuItemResponse `json:"menuItems"`
	Tables    []tableResponse    `json:"tables"`
	Orders    []orderResponse    `json:"orders"`
	Summary   summaryResponse    `json:"summary"`
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetDashboard(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "dashboard_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, dashboardResponse{
		MenuItems: toMenuResponses(view.MenuItems),
		Tables:    toTableResponses(view.Tables),
		Orders:    toOrderResponses(view.Orders),
		Summary: summaryResponse{
			OpenOrders:      view.Summary.OpenOrders,
			RevenueToday:    int64(view.Summary.RevenueToday),
			MenuCount:       view.Summary.MenuCount,
			AvailableTables: view.Summary.AvailableTables,
		},
	})
}

// reportRow is one CSV line of the daily sales report.
type reportRow struct {
	OrderID       int64  `csv:"order_id"`
	TableID       string `csv:"table_id"`
	CustomerName  string `csv:"customer_name"`
	PaymentMethod string `csv:"payment_method"`
	Total         int64  `csv:"total"`
	CreatedAt     string `csv:"created_at"`
}

// DailyReport streams paid orders of ?date= (any common date layout, local
// time) as CSV. Without date it reports today.
func (h *DashboardHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := dateparse.ParseIn(raw, time.Local)
		if err != nil {
			respondError(w, fmt.Sprintf("Invalid date %q", raw), http.StatusBadRequest, []FieldError{
				{Field: "date", Code: "invalid_value", Message: err.Error()},
			})
			return
		}
		day = parsed
	}

	orders, err := h.service.DailyReport(r.Context(), day)
	if err != nil {
		respondServiceError(w, r, h.logger, "report_failed", err)
		return
	}

	rows := make([]*reportRow, len(orders))
	for i, o := range orders {
		row := &reportRow{
			OrderID:       o.ID,
			CustomerName:  o.CustomerName,
			PaymentMethod: o.PaymentMethod,
			Total:         int64(o.Total),
			CreatedAt:     o.CreatedAt.In(time.Local).Format(time.RFC3339),
		}
		if o.TableID != nil {
			row.TableID = fmt.Sprint(*o.TableID)
		}
		rows[i] = row
	}

	body, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		respondServiceError(w, r, h.logger, "report_encode_failed", err)
		return
	}

	name := "sales.csv"
	if !day.IsZero() {
		name = "sales-" + day.Format("2006-01-02") + ".csv"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthHandler(db Pinger, lgr logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			lgr.Error("health_check_failed", "Database unreachable", logger.RequestID(r.Context()), nil, err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
