package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with the request id for
// correlation.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request id.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: middleware.GetRequestID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ActivateRequest defines the payload for account activation.
type ActivateRequest struct {
	Email string `json:"email" binding:"required"`
	Token string `json:"token" binding:"required"`
}

// EmailRequest carries just an email, used for activation resend and
// password reset requests.
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest carries the refresh token for access token renewal and
// logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AccessTokenResponse returns a renewed access token.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// PasswordResetCompleteRequest consumes a reset token with the new password.
type PasswordResetCompleteRequest struct {
	Email    string `json:"email" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest rotates the authenticated user's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeGroupRequest moves a user into a different access group.
type ChangeGroupRequest struct {
	Group string `json:"group" binding:"required"`
}

// UserResponse is the API view of an account.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		Group:     string(user.GroupName),
		CreatedAt: user.CreatedAt,
	}
}

// NamedEntityResponse is the API view of a lookup entry.
type NamedEntityResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NamedEntityRequest creates or renames a lookup entry.
type NamedEntityRequest struct {
	Name string `json:"name" binding:"required"`
}

func toNamedEntityResponses(entities []domain.NamedEntity) []NamedEntityResponse {
	out := make([]NamedEntityResponse, 0, len(entities))
	for _, entity := range entities {
		out = append(out, NamedEntityResponse{ID: entity.ID, Name: entity.Name})
	}
	return out
}

// MovieRequest creates or updates a catalog entry.
type MovieRequest struct {
	Name          string   `json:"name" binding:"required"`
	Year          int      `json:"year" binding:"required"`
	Time          int      `json:"time" binding:"required"`
	IMDb          float64  `json:"imdb"`
	Votes         int      `json:"votes"`
	MetaScore     *float64 `json:"meta_score"`
	Gross         *float64 `json:"gross"`
	Description   string   `json:"description" binding:"required"`
	Price         string   `json:"price" binding:"required"`
	Certification string   `json:"certification" binding:"required"`
	Genres        []string `json:"genres"`
	Stars         []string `json:"stars"`
	Directors     []string `json:"directors"`
}

// MovieResponse is the API view of a catalog entry.
type MovieResponse struct {
	ID            int64                 `json:"id"`
	UUID          string                `json:"uuid"`
	Name          string                `json:"name"`
	Year          int                   `json:"year"`
	Time          int                   `json:"time"`
	IMDb          float64               `json:"imdb"`
	Votes         int                   `json:"votes"`
	MetaScore     *float64              `json:"meta_score,omitempty"`
	Gross         *float64              `json:"gross,omitempty"`
	Description   string                `json:"description"`
	Price         string                `json:"price"`
	Certification NamedEntityResponse   `json:"certification"`
	Genres        []NamedEntityResponse `json:"genres"`
	Stars         []NamedEntityResponse `json:"stars"`
	Directors     []NamedEntityResponse `json:"directors"`
}

func toMovieResponse(movie *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:            movie.ID,
		UUID:          movie.UUID,
		Name:          movie.Name,
		Year:          movie.Year,
		Time:          movie.Time,
		IMDb:          movie.IMDb,
		Votes:         movie.Votes,
		MetaScore:     movie.MetaScore,
		Gross:         movie.Gross,
		Description:   movie.Description,
		Price:         movie.Price.StringFixed(2),
		Certification: NamedEntityResponse{ID: movie.Certification.ID, Name: movie.Certification.Name},
		Genres:        toNamedEntityResponses(movie.Genres),
		Stars:         toNamedEntityResponses(movie.Stars),
		Directors:     toNamedEntityResponses(movie.Directors),
	}
}

// CartItemResponse is the API view of one cart line.
type CartItemResponse struct {
	ID      int64     `json:"id"`
	MovieID int64     `json:"movie_id"`
	Name    string    `json:"name"`
	Price   string    `json:"price"`
	AddedAt time.Time `json:"added_at"`
}

// CartResponse is the API view of the user's cart.
type CartResponse struct {
	ID    int64              `json:"id"`
	Items []CartItemResponse `json:"items"`
	Total string             `json:"total"`
}

// AddCartItemRequest puts a movie into the cart.
type AddCartItemRequest struct {
	MovieID int64 `json:"movie_id" binding:"required"`
}

func toCartResponse(cart *domain.Cart) CartResponse {
	resp := CartResponse{ID: cart.ID, Items: make([]CartItemResponse, 0, len(cart.Items))}

	for _, item := range cart.Items {
		resp.Items = append(resp.Items, CartItemResponse{
			ID:      item.ID,
			MovieID: item.MovieID,
			Name:    item.MovieName,
			Price:   item.MoviePrice.StringFixed(2),
			AddedAt: item.AddedAt,
		})
	}
	resp.Total = cartTotal(cart)
	return resp
}

func cartTotal(cart *domain.Cart) string {
	if len(cart.Items) == 0 {
		return "0.00"
	}
	sum := cart.Items[0].MoviePrice
	for _, item := range cart.Items[1:] {
		sum = sum.Add(item.MoviePrice)
	}
	return sum.StringFixed(2)
}

// OrderItemResponse is the API view of one order line with its price
// snapshot.
type OrderItemResponse struct {
	ID           int64  `json:"id"`
	MovieID      int64  `json:"movie_id"`
	Name         string `json:"name"`
	PriceAtOrder string `json:"price_at_order"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []OrderItemResponse `json:"items"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.StringFixed(2),
		CreatedAt:   order.CreatedAt,
		Items:       make([]OrderItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:           item.ID,
			MovieID:      item.MovieID,
			Name:         item.MovieName,
			PriceAtOrder: item.PriceAtOrder.StringFixed(2),
		})
	}
	return resp
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

// PaymentResponse is the API view of a payment.
type PaymentResponse struct {
	ID                int64     `json:"id"`
	OrderID           int64     `json:"order_id"`
	Status            string    `json:"status"`
	Amount            string    `json:"amount"`
	ExternalPaymentID string    `json:"external_payment_id"`
	CreatedAt         time.Time `json:"created_at"`
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                payment.ID,
		OrderID:           payment.OrderID,
		Status:            string(payment.Status),
		Amount:            payment.Amount.StringFixed(2),
		ExternalPaymentID: payment.ExternalPaymentID,
		CreatedAt:         payment.CreatedAt,
	}
}

func toPaymentResponses(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	return out
}

// CheckoutResponse returns the stored payment with the gateway client
// secret for the frontend to confirm the charge.
type CheckoutResponse struct {
	Payment      PaymentResponse `json:"payment"`
	ClientSecret string          `json:"client_secret"`
}

// PageMeta carries relative pagination links and totals.
type PageMeta struct {
	PrevPage   *string `json:"prev_page"`
	NextPage   *string `json:"next_page"`
	TotalPages int     `json:"total_pages"`
	TotalItems int     `json:"total_items"`
}

// newPageMeta builds pagination metadata with relative links mirroring the
// current request's path.
func newPageMeta(c *gin.Context, page, perPage, totalItems int) PageMeta {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}

	meta := PageMeta{TotalPages: totalPages, TotalItems: totalItems}

	link := func(p int) *string {
		query := c.Request.URL.Query()
		query.Set("page", fmt.Sprintf("%d", p))
		query.Set("per_page", fmt.Sprintf("%d", perPage))
		s := c.Request.URL.Path + "?" + query.Encode()
		return &s
	}

	if page > 1 {
		meta.PrevPage = link(page - 1)
	}
	if page < totalPages {
		meta.NextPage = link(page + 1)
	}

	return meta
}
