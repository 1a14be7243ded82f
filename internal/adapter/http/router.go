package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/adapter/session"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type RouterDeps struct {
	Orders    interfaces.OrderService
	Dashboard interfaces.DashboardService
	Catalog   interfaces.CatalogService
	Staff     interfaces.StaffService
	Sessions  *session.Manager
	DB        Pinger
	Logger    logger.Logger
}

// NewRouter wires every endpoint. Order creation, the menu and the table
// list stay open for self-ordering; the rest needs a staff session.
func NewRouter(deps RouterDeps) http.Handler {
	orders := NewOrderHandler(deps.Orders, deps.Logger)
	catalog := NewCatalogHandler(deps.Catalog, deps.Logger)
	users := NewUserHandler(deps.Staff, deps.Sessions, deps.Logger)
	dashboard := NewDashboardHandler(deps.Dashboard, deps.Logger)

	staff := RequireRole(domain.RoleAdmin, domain.RoleCashier)
	admin := RequireRole(domain.RoleAdmin)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(deps.Logger))
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(middleware.CleanPath)
	r.Use(SessionMiddleware(deps.Sessions))

	r.Get("/healthz", HealthHandler(deps.DB, deps.Logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", users.Login)
		r.Delete("/login", users.Logout)
		r.Get("/me", users.Me)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.CreateOrder)
		r.Group(func(r chi.Router) {
			r.Use(staff)
			r.Get("/", orders.ListOrders)
			r.Put("/", orders.UpdateStatus)
			r.Get("/{id}/history", orders.GetOrderHistory)
		})
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", catalog.ListMenu)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", catalog.CreateMenuItem)
			r.Put("/", catalog.UpdateMenuItem)
			r.Delete("/", catalog.DeleteMenuItem)
		})
	})

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", catalog.ListTables)
		r.Group(func(r chi.Router) {
			r.Use(staff)
			r.Post("/", catalog.CreateTable)
			r.Put("/", catalog.UpdateTable)
			r.Delete("/", catalog.DeleteTable)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", users.ListUsers)
		r.Post("/", users.CreateUser)
		r.Put("/", users.UpdateUser)
		r.Delete("/", users.DeleteUser)
	})

	r.With(staff).Get("/dashboard", dashboard.GetDashboard)
	r.With(admin).Get("/reports/daily.csv", dashboard.DailyReport)

	return r
}
