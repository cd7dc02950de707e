package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/models"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/services"
	apperrors "github.com/yashrajoria/shopping-cart-backend/services/common/errors"
)

type CartController struct {
	svc *services.CartService
}

func NewCartController(svc *services.CartService) *CartController {
	return &CartController{svc: svc}
}

// ListCarts returns every stored cart. Debug/admin surface.
func (cc *CartController) ListCarts(c *gin.Context) {
	carts, err := cc.svc.ListCarts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if carts == nil {
		carts = []models.Cart{}
	}
	c.JSON(http.StatusOK, carts)
}

// GetCart returns the current cart for a user; an empty cart when none
// exists.
func (cc *CartController) GetCart(c *gin.Context) {
	userName := c.Param("userName")

	cart, err := cc.svc.GetCart(c.Request.Context(), userName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItems creates or replaces the cart in the request body.
func (cc *CartController) AddItems(c *gin.Context) {
	var cart models.Cart
	if err := c.ShouldBindJSON(&cart); err != nil {
		respondError(c, apperrors.Validation("invalid cart payload"))
		return
	}

	if err := cc.svc.AddItems(c.Request.Context(), cart); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart created for user " + cart.UserName})
}

// DeleteCart removes a user's cart. Succeeds even when no cart exists.
func (cc *CartController) DeleteCart(c *gin.Context) {
	userName := c.Param("userName")

	if err := cc.svc.DeleteCart(c.Request.Context(), userName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart deleted for user " + userName})
}

// Checkout validates the request and publishes a checkout event. The cart
// itself is untouched until the acknowledgment comes back.
func (cc *CartController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid checkout payload"))
		return
	}

	event, err := cc.svc.InitiateCheckout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "checkout initiated",
		"requestId":  event.RequestID,
		"totalPrice": event.TotalPrice,
	})
}

func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsError(err)
	c.JSON(appErr.Code, appErr)
}
