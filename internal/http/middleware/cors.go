package middleware

import (
	"github.com/valyala/fasthttp"
)

// CORS permits cross-origin GET/POST from any origin, matching what the
// browser-extension clients expect. Preflight requests are answered
// directly without reaching the router.
func CORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type")

		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}
