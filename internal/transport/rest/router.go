package rest

import (
	"net/http"

	"formassist/internal/config"
	"formassist/internal/service"
	"formassist/internal/transport/rest/handler"
	"formassist/internal/transport/rest/middleware"
	"formassist/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	Config          *config.Config
	AuthService     *service.AuthService
	CatalogService  *service.CatalogService
	SessionService  *service.SessionService
	ReviewService   *service.ReviewService
	ExportService   *service.ExportService
	CheckoutService *service.CheckoutService
	WSHub           *ws.Hub
	Log             *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	moduleHandler := handler.NewModuleHandler(c.CatalogService)
	reviewHandler := handler.NewReviewHandler(c.ReviewService)
	exportHandler := handler.NewExportHandler(c.ExportService)
	checkoutHandler := handler.NewCheckoutHandler(c.CheckoutService, c.Log)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Log)

	// Initialize middleware
	sessionMW := middleware.NewSessionMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config.CORS))
	r.Use(middleware.Locale)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	r.HandleFunc("/api/checkout_sessions", checkoutHandler.Create).Methods("POST", "OPTIONS")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/modules", moduleHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/modules/{id}", moduleHandler.Get).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/session", wsHandler.SessionWS).Methods("GET")

	// Session routes (require session token)
	sessionRoutes := v1.PathPrefix("/session").Subrouter()
	sessionRoutes.Use(sessionMW.RequireSession)

	sessionRoutes.HandleFunc("", sessionHandler.State).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	sessionRoutes.HandleFunc("/module", sessionHandler.SelectModule).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/answers/{questionId}", sessionHandler.SetAnswer).Methods("PATCH", "OPTIONS")
	sessionRoutes.HandleFunc("/answers/{questionId}/evidence", sessionHandler.UploadEvidence).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/answers/{questionId}/evidence", sessionHandler.DownloadEvidence).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/review", reviewHandler.Generate).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/review", reviewHandler.Latest).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/export", exportHandler.Export).Methods("GET", "OPTIONS")

	if dir := c.Config.StaticDir; dir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
	}

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
