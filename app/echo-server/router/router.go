package router

import (
	"net/http"
	"supplyStore/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/me", handler.Me, authRequired)
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, stockHandler *rest.SupplierHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, authRequired, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)

	products.GET("/:id/stocks", stockHandler.ListProductStock)
	products.PUT("/:id/stocks", stockHandler.UpdateProductStock, authRequired, adminOnly)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)
	orders.POST("", ordersHandler.CreateOrder)
	orders.GET("", ordersHandler.GetAllOrders)
	orders.GET("/:id", ordersHandler.GetOrderByID)
	orders.PUT("/:id", ordersHandler.UpdateOrder)
	orders.DELETE("/:id", ordersHandler.DeleteOrder)
	orders.PATCH("/:id/status", ordersHandler.UpdateOrderStatus, adminOnly)
}

func SetupSupplierRoutes(api *echo.Group, handler *rest.SupplierHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	suppliers := api.Group("/suppliers")

	suppliers.GET("", handler.ListSuppliers)
	suppliers.GET("/:id", handler.GetSupplier)
	suppliers.GET("/:id/stocks", handler.ListSupplierStock)
	suppliers.POST("", handler.CreateSupplier, authRequired, adminOnly)
}

func SetTransactionRoutes(api *echo.Group, handler *rest.LedgerHandler, authRequired echo.MiddlewareFunc) {
	transactions := api.Group("/transactions", authRequired)
	transactions.POST("/transfer-points", handler.TransferPoints)
	transactions.GET("", handler.ListTransactions)
}

func SetupOpsRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
