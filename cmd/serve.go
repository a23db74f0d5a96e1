package cmd

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/camden-git/gatewatch/auditlog"
	"github.com/camden-git/gatewatch/handlers"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registry status HTTP API",
	Long: `Expose a read/admin HTTP API over the shared registry: current
presence status per person and the completed session log. Intended for
dashboards; the camera loops do not depend on it.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) {
	rt, err := openRuntime()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer rt.Close()

	sqlDB, err := rt.DB.DB()
	if err != nil {
		log.Fatalf("FATAL: failed to get underlying sql.DB: %v", err)
	}

	personHandler := &handlers.PersonHandler{PersonRepo: rt.Persons, SQLDB: sqlDB}
	sessionHandler := &handlers.SessionHandler{Audit: auditlog.NewLogger(rt.Cfg.AuditLogPath)}

	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Get("/", personHandler.ListPeople)
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Delete("/", personHandler.DeletePerson)
			})
		})
		r.Get("/sessions", sessionHandler.ListSessions)
	})

	serverAddr := ":" + servePort
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
