package main

import (
	"log"
	"net/http"

	"github.com/akt-prep/backend/internal/auth"
	"github.com/akt-prep/backend/internal/authz"
	"github.com/akt-prep/backend/internal/config"
	"github.com/akt-prep/backend/internal/database"
	"github.com/akt-prep/backend/internal/identity"
	"github.com/akt-prep/backend/internal/itembank"
	"github.com/akt-prep/backend/internal/middleware"
	"github.com/akt-prep/backend/internal/quiz"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Load the item bank
	bank, err := itembank.Load(cfg.ItemsPath)
	if err != nil {
		log.Fatalf("Failed to load item dataset: %v", err)
	}
	log.Printf("Loaded %d items from %s", bank.Len(), cfg.ItemsPath)

	// Initialize the identity provider
	var provider identity.Provider
	var adminAPI identity.AdminAPI
	switch cfg.Provider {
	case config.ProviderLocal:
		db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(db, cfg.DBDriver); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		local := identity.NewLocal(db, cfg.JWTSecret)
		provider = local
		adminAPI = local
	case config.ProviderSupabase:
		supa := identity.NewSupabase(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey, cfg.JWTSecret)
		provider = supa
		adminAPI = supa.AdminAPI()
		if adminAPI == nil {
			log.Printf("WARNING: SUPABASE_SERVICE_KEY is not set; admin user management is disabled")
		}
	}

	gate := authz.NewGate(cfg.AdminEmails)
	sessions := quiz.NewManager(bank)

	// Initialize handlers
	authHandler := auth.NewHandler(provider, adminAPI, gate, sessions)
	quizHandler := quiz.NewHandler(sessions)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", authHandler.SignUp).Methods("POST")
	api.HandleFunc("/auth/signin", authHandler.SignIn).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(provider))
	protected.HandleFunc("/auth/signout", authHandler.SignOut).Methods("POST")
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	quizHandler.RegisterRoutes(protected)

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin(gate))
	authHandler.RegisterAdminRoutes(admin)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
