package main

import (
	"batch-route-service/internal/adapters/cache"
	"batch-route-service/internal/adapters/pool"
	"batch-route-service/internal/adapters/repositories"
	"batch-route-service/internal/adapters/routing"
	"batch-route-service/internal/api"
	"batch-route-service/internal/config"
	"batch-route-service/internal/platform/db"
	"batch-route-service/internal/ports"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (Postgres/SQLite/Redis caches, ORS router)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	routeCache, repo, runs := buildStorage()

	router, err := routing.NewORSRouter(orsKey, routeCache)
	if err != nil {
		log.Fatal(err)
	}

	newPool := func(workers int) (ports.WorkerPool, error) {
		return pool.NewFixedPool(workers)
	}

	handler := api.NewRouter(router, repo, runs, newPool)

	// Timeouts are tuned for cold-cache batch dispatch (one external
	// API call per OD pair).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// buildStorage picks the route cache backend and optional repositories
// from the environment. Precedence: Redis, then Postgres, then SQLite.
// Postgres additionally provides the OD pair seed and run audit stores.
func buildStorage() (ports.RouteCache, ports.ODPairRepository, ports.BatchRunStore) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		log.Printf("route cache backend=redis addr=%s", addr)
		return cache.NewRedisRouteCache(client, 24*time.Hour), nil, nil
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		repo := repositories.NewPostgresRepository(pg)
		log.Printf("route cache backend=postgres")
		return cache.NewSQLRouteCache(pg), repo, repo
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	lite, err := openSqlite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("route cache backend=sqlite path=%s", dbPath)
	return cache.NewSqliteRouteCache(lite), nil, nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	lite, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := lite.Ping(); err != nil {
		return nil, err
	}
	if err := cache.InitSqliteSchema(lite); err != nil {
		return nil, err
	}
	return lite, nil
}
