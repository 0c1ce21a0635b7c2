package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session/offline", handler.LoginOffline)
		r.Post("/session/online", handler.LoginOnline)
		r.Get("/session", handler.CurrentSession)
		r.Delete("/session", handler.Logout)

		r.Post("/margin/calculate", handler.CalculateMargin)
		r.Get("/import/template", handler.ImportTemplate)

		r.Group(func(r chi.Router) {
			r.Use(handler.RequireSession)

			r.Get("/products", handler.ListProducts)
			r.Post("/products", handler.CreateProduct)
			r.Get("/products/{id}", handler.GetProduct)
			r.Put("/products/{id}", handler.UpdateProduct)
			r.Delete("/products/{id}", handler.DeleteProduct)
			r.Post("/products/{id}/stock", handler.AdjustStock)
			r.Post("/products/{id}/images", handler.AddProductImage)
			r.Post("/images", handler.UploadImage)

			r.Get("/sales", handler.ListSales)
			r.Post("/sales", handler.RecordSale)
			r.Post("/returns", handler.RecordReturn)
			r.Get("/logs", handler.ListLogs)

			r.Get("/settings", handler.GetSettings)
			r.Put("/settings", handler.SaveSettings)

			r.Get("/users", handler.ListUsers)
			r.Post("/users", handler.SaveUser)
			r.Put("/users/{username}", handler.SaveUser)
			r.Delete("/users/{username}", handler.DeleteUser)

			r.Post("/import", handler.ImportProducts)
			r.Get("/export", handler.ExportProducts)
			r.Get("/backup", handler.Backup)
			r.Post("/restore", handler.Restore)

			r.Get("/dashboard", handler.Dashboard)
		})
	})

	return r
}
