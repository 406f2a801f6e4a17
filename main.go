package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"sitetime/internal/cache"
	"sitetime/internal/config"
	"sitetime/internal/db"
	"sitetime/internal/http/handlers"
	appmw "sitetime/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb, err := db.Connect(cfg)
	if err != nil {
		// Not fatal: the process keeps serving, data operations fail
		// with store errors until the database comes back on restart.
		log.Printf("failed to connect database: %v (data operations will fail)", err)
	}
	store := db.NewStore(gdb, cfg.StorageShape)

	var summaryCache *cache.Summary
	if cfg.RedisURL != "" {
		summaryCache, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.Printf("summary cache disabled: %v", err)
		}
	}

	handlers.InitPrometheusMetrics()

	if summaryCache != nil {
		cache.StartRefresher(summaryCache, cfg.Granularity, func() ([]byte, error) {
			return handlers.ComputeSummary(store, cfg, "")
		})
	}

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.POST("/log-usage", handlers.LogUsage(store, summaryCache, cfg))
	r.GET("/usage", handlers.Usage(store, cfg))
	r.GET("/usage/summary", handlers.Summary(store, summaryCache, cfg))
	r.GET("/users", handlers.Users(store))

	r.GET("/metrics", handlers.MetricsHandler())

	// Global middleware chain: request logger, then CORS, then router.
	handler := handlers.RequestLogger(appmw.CORS(r.Handler))

	log.Printf("sitetime listening on %s (shape=%s granularity=%s timestamps=%s)",
		cfg.ListenAddr, cfg.StorageShape, cfg.Granularity, cfg.TimestampFormat)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
