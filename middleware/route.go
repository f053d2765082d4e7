package middleware

import (
	"github.com/gin-gonic/gin"

	midsec "MChat/middleware/security"
)

// RouteOpt configures a registered route.
type RouteOpt struct {
	IsAuth bool
}

var verifier midsec.TokenVerifier

// Setup wires the token verifier used for authenticated routes; call
// once from main before registering routes.
func Setup(v midsec.TokenVerifier) {
	verifier = v
}

func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path, midsec.Middleware(verifier), handler)
	} else {
		r.POST(path, handler)
	}
}

func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path, midsec.Middleware(verifier), handler)
	} else {
		r.GET(path, handler)
	}
}
