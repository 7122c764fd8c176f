// @title           DataShare API
// @version         1.0
// @description     Minimal file-sharing backend: registration, login, uploads with expiration and optional password, shareable download links.
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
package main

import (
	"context"
	"log"
	"net/http"

	"datashare-backend/internal/api"
	"datashare-backend/internal/auth"
	"datashare-backend/internal/config"
	"datashare-backend/internal/database"
	"datashare-backend/internal/storage"
	"datashare-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "datashare-backend/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load configuration: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		log.Fatalf("could not create token issuer: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("could not connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("could not ping the database: %v", err)
	}
	log.Println("connected to the database")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("could not initialize local storage: %v", err)
	}
	log.Printf("file blobs will be stored in: %s", cfg.Storage.Path)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, localStorage, tokens, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)
	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/register", server.RegisterHandler)
		r.Post("/users/login", server.LoginHandler)
		r.Get("/users/{id}", server.GetUserHandler)

		r.Post("/files/upload", server.UploadFileHandler)
		r.Get("/files/download/{id}", server.DownloadFileHandler)
		r.Get("/files/{id}", server.GetFileInfoHandler)
		r.Get("/files/user/{userId}", server.ListUserFilesHandler)
		r.Delete("/files/{id}", server.DeleteFileHandler)
	})

	log.Println("starting server on :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("could not start server: %v", err)
	}
}
