package main

import (
	"net/http"
	"os"
	"time"

	"med-reminder/internal/adapters/auth/jwtverify"
	"med-reminder/internal/platform/logger"
	"med-reminder/internal/ports/auth"
	"med-reminder/internal/router"

	"github.com/joho/godotenv"
)

// @title Med Reminder API
// @version 1.0
// @description Recordatorios de medicación: pautas diarias, historial de tomas y ciclo de vida de las notificaciones de dosis.
// @BasePath /
func main() {
	// .env opcional; en prod las vars vienen del entorno
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var verifier auth.AuthVerifier
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		v, err := jwtverify.New(secret, os.Getenv("JWT_ISSUER"))
		if err != nil {
			log.Error("jwt verifier misconfigured", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = v
	} else {
		log.Info("JWT_SECRET not set, running in dev mode (X-Debug-User-ID)", nil)
	}

	r := router.NewRouter(router.Options{AuthVerifier: verifier})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
