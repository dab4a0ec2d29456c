package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/shelfpoint/shelfpoint/internal/book"
	"github.com/shelfpoint/shelfpoint/internal/checkout"
	"github.com/shelfpoint/shelfpoint/internal/scanlog"
	"github.com/shelfpoint/shelfpoint/internal/transport/middleware"
	"github.com/shelfpoint/shelfpoint/internal/transport/swagger"
	"github.com/shelfpoint/shelfpoint/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins string, bookHandler *book.Handler, userHandler *user.Handler, checkoutHandler *checkout.Handler, scanlogHandler *scanlog.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI spec at root, with the Swagger UI pointed at it.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if bookHandler != nil {
			r.Route("/books", func(br chi.Router) {
				br.Get("/", bookHandler.List)
				br.Get("/{code}", bookHandler.GetByCode)
			})
		}

		if userHandler != nil {
			r.Get("/users/{code}", userHandler.GetByCode)
		}

		if checkoutHandler != nil {
			r.Route("/checkouts", func(cr chi.Router) {
				cr.Post("/", checkoutHandler.Checkout)
				cr.Post("/return", checkoutHandler.Return)
				cr.Get("/active", checkoutHandler.ListActive)
			})
		}

		if scanlogHandler != nil {
			r.Route("/barcodes", func(sr chi.Router) {
				sr.Get("/", scanlogHandler.List)
				sr.Post("/", scanlogHandler.Add)
				sr.Get("/{barcode}", scanlogHandler.Lookup)
				sr.Delete("/{id}", scanlogHandler.Delete)
			})
		}
	})
}
