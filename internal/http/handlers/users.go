package handlers

import (
	"github.com/valyala/fasthttp"

	dbpkg "sitetime/internal/db"
)

// Users handles GET /users: every distinct username, sorted ascending so
// the output is deterministic for a fixed store.
func Users(store dbpkg.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		names, err := store.Usernames()
		if err != nil {
			storeError(ctx, "users", err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, names)
	}
}
