package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
	"github.com/msubchak/online-cinema/internal/usecase"
)

// CartHandler exposes the per-user shopping cart.
type CartHandler struct {
	carts *usecase.CartService
}

func NewCartHandler(carts *usecase.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /cart.
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	cart, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCartNotFound, Status: http.StatusNotFound, Message: "Cart not found."},
		}, http.StatusInternalServerError, "Could not load cart.")
		return
	}

	c.JSON(http.StatusOK, toCartResponse(cart))
}

// AddMovie handles POST /cart/items.
func (h *CartHandler) AddMovie(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "movie_id is required"))
		return
	}

	cart, err := h.carts.AddMovie(c.Request.Context(), userID, req.MovieID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "Movie not found."},
			{Err: usecase.ErrMovieAlreadyInCart, Status: http.StatusConflict, Message: "Movie is already in the cart."},
			{Err: usecase.ErrMovieAlreadyPurchased, Status: http.StatusBadRequest, Message: "Movie has already been purchased."},
		}, http.StatusInternalServerError, "Could not add movie to cart.")
		return
	}

	c.JSON(http.StatusCreated, toCartResponse(cart))
}

// RemoveMovie handles DELETE /cart/items/:id where :id is the movie id.
func (h *CartHandler) RemoveMovie(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	movieID, ok := parseIDParam(c)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveMovie(c.Request.Context(), userID, movieID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCartItemNotFound, Status: http.StatusNotFound, Message: "Movie is not in the cart."},
		}, http.StatusInternalServerError, "Could not remove movie from cart.")
		return
	}

	c.JSON(http.StatusOK, toCartResponse(cart))
}
