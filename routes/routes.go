package routes

import (
	"tamias/auth"
	"tamias/catalog"
	"tamias/checkout"
	"tamias/dashboard"
	"tamias/display"
	"tamias/middleware"
	"tamias/ratelim"
	"tamias/receipts"
	"tamias/stores"
	"tamias/transactions"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, loginLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/login", loginLimiter.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", loginLimiter.Limit(auth.RefreshToken))
	router.GET("/api/auth/me", middleware.Authenticate(auth.Me))
}

func AddCatalogRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/products", middleware.Authenticate(catalog.GetProducts))
	router.GET("/api/products/:productid", middleware.Authenticate(catalog.GetProduct))
	router.GET("/api/barcode/:barcode", middleware.Authenticate(catalog.GetProductByBarcode))
	router.POST("/api/products", rateLimiter.Limit(middleware.Authenticate(catalog.CreateProduct)))
	router.PUT("/api/products/:productid", rateLimiter.Limit(middleware.Authenticate(catalog.UpdateProduct)))
	router.DELETE("/api/products/:productid", rateLimiter.Limit(middleware.Authenticate(catalog.DeleteProduct)))

	router.GET("/api/categories", middleware.Authenticate(catalog.GetCategories))
}

func AddCheckoutRoutes(router *httprouter.Router, h *checkout.Handler, qris *receipts.QRISHandler) {
	router.GET("/api/pos/cart", middleware.Authenticate(h.GetCart))
	router.POST("/api/pos/cart/items", middleware.Authenticate(h.AddItem))
	router.PUT("/api/pos/cart/items/:productid", middleware.Authenticate(h.UpdateItem))
	router.DELETE("/api/pos/cart/items/:productid", middleware.Authenticate(h.RemoveItem))
	router.DELETE("/api/pos/cart", middleware.Authenticate(h.ClearCart))

	router.POST("/api/pos/checkout", middleware.Authenticate(h.BeginCheckout))
	router.DELETE("/api/pos/checkout", middleware.Authenticate(h.CancelCheckout))
	router.PUT("/api/pos/checkout/method", middleware.Authenticate(h.SelectPayment))
	router.PUT("/api/pos/checkout/tendered", middleware.Authenticate(h.SetTendered))
	router.GET("/api/pos/checkout/qris", middleware.Authenticate(qris.PaymentCode))
	router.POST("/api/pos/checkout/confirm", middleware.Authenticate(h.Confirm))
	router.POST("/api/pos/checkout/acknowledge", middleware.Authenticate(h.Acknowledge))

	router.DELETE("/api/pos/session", middleware.Authenticate(h.DropSession))
}

func AddTransactionRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/transactions", middleware.Authenticate(transactions.GetTransactions))
	router.GET("/api/transactions/:transactionid", middleware.Authenticate(transactions.GetTransaction))
	router.GET("/api/transactions/:transactionid/receipt", rateLimiter.Limit(middleware.Authenticate(receipts.PrintReceipt)))
}

func AddDashboardRoutes(router *httprouter.Router) {
	router.GET("/api/dashboard/stats", middleware.Authenticate(dashboard.GetStats))
	router.GET("/api/dashboard/recent", middleware.Authenticate(dashboard.GetRecentTransactions))
}

func AddDisplayRoutes(router *httprouter.Router, hub *display.Hub) {
	router.GET("/ws/display/:storeid", display.WebSocketHandler(hub))
	router.GET("/api/pos/display/status", middleware.Authenticate(display.GetStatus(hub)))
}

func AddStoreRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/store", middleware.Authenticate(stores.GetStore))
	router.PUT("/api/store", rateLimiter.Limit(middleware.Authenticate(stores.UpdateStore)))
}
