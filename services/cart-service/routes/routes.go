package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/controllers"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/services"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
	"github.com/yashrajoria/shopping-cart-backend/services/common/middleware"
)

// RegisterCartRoutes wires the cart HTTP surface onto the router.
func RegisterCartRoutes(router *gin.Engine, svc *services.CartService) {
	router.Use(logger.RequestLogger())
	router.Use(middleware.RateLimitMiddleware())

	cc := controllers.NewCartController(svc)

	cart := router.Group("/cart")
	{
		cart.GET("", cc.ListCarts)
		cart.GET("/:userName", cc.GetCart)
		cart.POST("", cc.AddItems)
		cart.DELETE("/:userName", cc.DeleteCart)
		cart.POST("/checkout", cc.Checkout)
	}
}
