package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"sitetime/internal/aggregate"
	"sitetime/internal/cache"
	"sitetime/internal/config"
	dbpkg "sitetime/internal/db"
	"sitetime/internal/timefmt"
)

// ComputeSummary renders the summary body for an optional username
// filter: fetch raw events, run the grouping pass, marshal. The cache
// refresher uses the same function so cached and computed bodies are
// byte-identical.
func ComputeSummary(store dbpkg.Store, cfg *config.Config, username string) ([]byte, error) {
	events, err := store.Events(username)
	if err != nil {
		return nil, err
	}
	groups := aggregate.Summarize(
		events,
		cfg.Granularity == config.GranularityDaily,
		timefmt.New(cfg.TimestampFormat).Location(),
	)
	return json.Marshal(groups)
}

// Summary handles GET /usage/summary: per-group dwell totals and visit
// counts, optionally pre-filtered by username.
func Summary(store dbpkg.Store, summary *cache.Summary, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		username := string(ctx.QueryArgs().Peek("username"))

		body, epoch, ok := summary.Get(ctx, username, cfg.Granularity)
		if ok {
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetContentType("application/json")
			ctx.SetBody(body)
			return
		}

		body, err := ComputeSummary(store, cfg, username)
		if err != nil {
			storeError(ctx, "usage-summary", err)
			return
		}
		summary.Set(ctx, username, cfg.Granularity, epoch, body)

		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("application/json")
		ctx.SetBody(body)
	}
}
