package routes

import (
	"storefront/controllers"
	"storefront/middleware"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Dependencies struct {
	Tokens *utils.TokenIssuer

	Auth       *controllers.AuthController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Promos     *controllers.PromoController
	Reviews    *controllers.ReviewController
	Cart       *controllers.CartController
	Checkout   *controllers.TransactionController
	History    *controllers.HistoryController
	Orders     *controllers.OrderController
	Health     *controllers.HealthController
}

func SetupRoutes(router *gin.Engine, d Dependencies) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", d.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/register", d.Auth.Register)
	router.POST("/auth/login", d.Auth.Login)
	router.GET("/categories", d.Categories.GetAllCategories)
	router.GET("/products", d.Products.GetAllProducts)
	router.GET("/products/:id", d.Products.GetProductByID)
	router.GET("/products/:id/reviews", d.Reviews.ListReviews)
	router.GET("/promos", d.Promos.GetAllPromos)

	cart := router.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(d.Tokens), middleware.CartSessionMiddleware())
	{
		cart.GET("", d.Cart.GetCart)
		cart.DELETE("", d.Cart.ClearCart)
		cart.POST("/lines", d.Cart.AddLine)
		cart.PATCH("/lines", d.Cart.UpdateLine)
		cart.DELETE("/lines", d.Cart.RemoveLine)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(d.Tokens))
	{
		auth.GET("/auth/profile", d.Auth.GetProfile)
		auth.POST("/products/:id/reviews", d.Reviews.SubmitReview)
		auth.GET("/orders", d.History.GetHistory)
		auth.POST("/orders/checkout", middleware.CartSessionMiddleware(), d.Checkout.Checkout)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.Tokens), middleware.AdminMiddleware())
	{
		admin.POST("/products", d.Products.CreateProduct)
		admin.PATCH("/products/:id", d.Products.UpdateProduct)
		admin.DELETE("/products/:id", d.Products.DeleteProduct)

		admin.POST("/categories", d.Categories.CreateCategory)
		admin.DELETE("/categories/:id", d.Categories.DeleteCategory)

		admin.POST("/promos", d.Promos.CreatePromo)
		admin.DELETE("/promos/:id", d.Promos.DeletePromo)

		admin.GET("/orders", d.Orders.GetAllOrders)
		admin.PATCH("/orders/:id/status", d.Orders.UpdateOrderStatus)
	}
}
