package routes

import (
	"tamias/checkout"
	"tamias/display"
	"tamias/ratelim"
	"tamias/receipts"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the stateful handlers the route groups need.
type Deps struct {
	Checkout    *checkout.Handler
	QRIS        *receipts.QRISHandler
	DisplayHub  *display.Hub
	RateLimiter *ratelim.RateLimiter
	// LoginLimiter is deliberately tighter than RateLimiter.
	LoginLimiter *ratelim.RateLimiter
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddAuthRoutes(router, d.LoginLimiter)
	AddCatalogRoutes(router, d.RateLimiter)
	AddCheckoutRoutes(router, d.Checkout, d.QRIS)
	AddTransactionRoutes(router, d.RateLimiter)
	AddDashboardRoutes(router)
	AddDisplayRoutes(router, d.DisplayHub)
	AddStoreRoutes(router, d.RateLimiter)
}
