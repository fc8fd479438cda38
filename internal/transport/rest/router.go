package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/swaggo/swag"

	_ "github.com/UniqBrio/UniqBrio-sub014/docs"
	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
	"github.com/UniqBrio/UniqBrio-sub014/internal/transport/rest/handler"
	"github.com/UniqBrio/UniqBrio-sub014/internal/transport/rest/middleware"
	"github.com/UniqBrio/UniqBrio-sub014/internal/transport/ws"
)

// APIPrefix is where the session-management endpoints are mounted
const APIPrefix = "/api/dashboard/services/session-management"

// Auth is what the router needs from the auth service
type Auth interface {
	handler.Authenticator
	middleware.TokenValidator
}

// Container holds all dependencies for the router
type Container struct {
	AuthService    Auth
	SessionService handler.SessionManager
	Idempotency    cache.IdempotencyCache
	WSHub          *ws.Hub
	AllowedOrigins []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	idempotent := middleware.Idempotency(c.Idempotency)

	// Public routes
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/swagger/doc.json", swaggerDoc).Methods("GET")

	// WebSocket routes (public with token in query param)
	r.HandleFunc("/ws/tenants/{tenantId}/dashboard", wsHandler.DashboardWS).Methods("GET")
	r.HandleFunc("/ws/tenants/{tenantId}/instructors/{instructorId}", wsHandler.InstructorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Staff routes (require staff auth)
	staff := r.PathPrefix(APIPrefix).Subrouter()
	staff.Use(authMW.RequireStaff)

	staff.HandleFunc("/sessions", sessionHandler.Create).Methods("POST")
	staff.HandleFunc("/sessions", sessionHandler.List).Methods("GET")
	staff.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET")
	staff.HandleFunc("/sessions/{id}/lineage", sessionHandler.Lineage).Methods("GET")
	staff.HandleFunc("/conflicts", sessionHandler.Conflicts).Methods("GET")

	// Ledger mutations replay on a repeated Idempotency-Key
	staff.Handle("/session-reschedules", idempotent(http.HandlerFunc(sessionHandler.Reschedule))).Methods("POST")
	staff.Handle("/session-cancellations", idempotent(http.HandlerFunc(sessionHandler.Cancel))).Methods("POST")
	staff.Handle("/instructor-reassignments", idempotent(http.HandlerFunc(sessionHandler.Reassign))).Methods("POST")

	origins := c.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsMW := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.IdempotencyHeader},
		AllowCredentials: true,
	})

	var h http.Handler = corsMW.Handler(r)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return handlers.CombinedLoggingHandler(os.Stdout, h)
}

func swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api docs unavailable"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
