package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/models"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/services"
	apperrors "github.com/yashrajoria/shopping-cart-backend/services/common/errors"
)

type CheckoutController struct {
	processor *services.Processor
}

func NewCheckoutController(processor *services.Processor) *CheckoutController {
	return &CheckoutController{processor: processor}
}

// ListOrders returns every recorded order. Debug/admin surface.
func (cc *CheckoutController) ListOrders(c *gin.Context) {
	orders, err := cc.processor.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns the order for (userName, orderDate), or 404.
func (cc *CheckoutController) GetOrder(c *gin.Context) {
	userName := c.Param("userName")
	orderDate := c.Query("orderDate")
	if orderDate == "" {
		respondError(c, apperrors.Validation("orderDate query parameter is missing"))
		return
	}

	order, err := cc.processor.GetOrder(c.Request.Context(), userName, orderDate)
	if err != nil {
		respondError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsError(err)
	c.JSON(appErr.Code, appErr)
}
