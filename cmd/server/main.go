package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/app"
	"github.com/UniqBrio/UniqBrio-sub014/internal/config"
	"github.com/UniqBrio/UniqBrio-sub014/internal/transport/rest"
)

// @title UniqBrio Session Management API
// @version 1.0
// @description Schedule ledger for academy sessions: reschedule, cancel and reassign with full history
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("started")
	cfg := config.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close(context.Background())

	go a.Reminder.Run(ctx)

	router := rest.NewRouter(&rest.Container{
		AuthService:    a.Auth,
		SessionService: a.Sessions,
		Idempotency:    a.IdempotencyCache,
		WSHub:          a.WSHub,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Printf("Staff auth: username=%s tenant=%s", cfg.StaffUsername, cfg.StaffTenantID)
		log.Println("Endpoints:")
		log.Println("  POST /api/auth/login")
		log.Println("  POST/GET " + rest.APIPrefix + "/sessions")
		log.Println("  GET  " + rest.APIPrefix + "/sessions/{id}[/lineage]")
		log.Println("  GET  " + rest.APIPrefix + "/conflicts")
		log.Println("  POST " + rest.APIPrefix + "/session-reschedules")
		log.Println("  POST " + rest.APIPrefix + "/session-cancellations")
		log.Println("  POST " + rest.APIPrefix + "/instructor-reassignments")
		log.Println("  WS   /ws/tenants/{tenantId}/dashboard")
		log.Println("  WS   /ws/tenants/{tenantId}/instructors/{instructorId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
