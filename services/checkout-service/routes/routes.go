package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/controllers"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/services"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

// RegisterCheckoutRoutes wires the checkout HTTP surface onto the router.
func RegisterCheckoutRoutes(router *gin.Engine, processor *services.Processor) {
	router.Use(logger.RequestLogger())

	cc := controllers.NewCheckoutController(processor)

	checkout := router.Group("/checkout")
	{
		checkout.GET("", cc.ListOrders)
		checkout.GET("/:userName", cc.GetOrder)
	}
}
