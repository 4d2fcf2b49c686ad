package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"vertexcore-storefront/checkout"
	"vertexcore-storefront/config"
	"vertexcore-storefront/events"
	"vertexcore-storefront/handlers"
	"vertexcore-storefront/middleware"
	"vertexcore-storefront/services/commerce"
	"vertexcore-storefront/services/identity"
	"vertexcore-storefront/store"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		// Only slow requests and errors are worth a log line.
		elapsed := time.Since(start)
		if elapsed > 500*time.Millisecond || wrapper.status >= 400 {
			log.Printf(
				"%s %s %s %d %v",
				r.Method,
				r.RequestURI,
				r.RemoteAddr,
				wrapper.status,
				elapsed,
			)
		}
	})
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)

	cfg := config.Load()
	log.Printf("Configuration loaded successfully")

	bus, err := events.NewBus(cfg.Redis.URL, "storefront_events")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer bus.Close()
	log.Println("Successfully connected to Redis")

	commerceClient := commerce.NewClient(cfg.Commerce.AccountToken)
	identityService := identity.NewService(cfg.Session.Secret, "vertexcore-storefront")
	orchestrator := checkout.NewOrchestrator(commerceClient, cfg.Commerce.SiteURL)

	sessions := store.NewSessions(cfg.Session)
	cartStore := store.NewCartStore(sessions, bus)
	userStore := store.NewUserStore(identityService, cfg.Session)
	flags := store.NewCheckoutState(sessions)

	cartHandler := handlers.NewCartHandler(cartStore, commerceClient, bus)
	catalogHandler := handlers.NewCatalogHandler(commerceClient)
	checkoutHandler := handlers.NewCheckoutHandler(orchestrator, cartStore, userStore, flags)
	authHandler := handlers.NewAuthHandler(orchestrator, userStore, flags)
	sessionHandler := handlers.NewSessionHandler(cartStore, userStore, bus)

	rateLimiter := middleware.NewRateLimiter(bus.Client())

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.SecurityHeadersMiddleware)
	router.Use(rateLimiter.RateLimitMiddleware())
	router.Use(loggingMiddleware)

	// Redirect-flow pages; the query parameter names are a wire contract
	// with the external provider's return redirects.
	router.HandleFunc("/checkout", checkoutHandler.StartCheckout).Methods("POST")
	router.HandleFunc("/checkout/return", checkoutHandler.CheckoutReturn).Methods("GET")
	router.HandleFunc("/login", authHandler.Login).Methods("GET")
	router.HandleFunc("/auth/return", authHandler.AuthReturn).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/catalog", catalogHandler.GetCatalog).Methods("GET", "OPTIONS")
	api.HandleFunc("/catalog/packages/{id}", catalogHandler.GetPackage).Methods("GET", "OPTIONS")

	api.HandleFunc("/cart", cartHandler.GetCart).Methods("GET", "OPTIONS")
	api.HandleFunc("/cart", cartHandler.AddToCart).Methods("POST")
	api.HandleFunc("/cart/remove", cartHandler.RemoveFromCart).Methods("POST", "OPTIONS")
	api.HandleFunc("/cart/clear", cartHandler.ClearCart).Methods("POST", "OPTIONS")
	api.HandleFunc("/cart/open", cartHandler.OpenCart).Methods("POST", "OPTIONS")

	api.HandleFunc("/session", sessionHandler.Status).Methods("GET", "OPTIONS")
	api.HandleFunc("/events", sessionHandler.Events).Methods("GET")
	api.HandleFunc("/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	startTime := time.Now()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		health := struct {
			Status    string `json:"status"`
			Time      string `json:"time"`
			Redis     string `json:"redis"`
			Uptime    string `json:"uptime"`
			GoVersion string `json:"go_version"`
		}{
			Status:    "ok",
			Time:      time.Now().Format(time.RFC3339),
			Redis:     "connected",
			Uptime:    fmt.Sprintf("%v", time.Since(startTime)),
			GoVersion: runtime.Version(),
		}

		if err := bus.Client().Ping(ctx).Err(); err != nil {
			health.Status = "degraded"
			health.Redis = "error"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	}).Methods("GET")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	<-stop
	log.Println("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Closing Redis connections...")
	bus.Close()

	log.Println("Server exited properly")
}
