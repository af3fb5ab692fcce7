package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/usecase"
)

// MovieHandler exposes the movie catalog endpoints.
type MovieHandler struct {
	movies *usecase.MovieService
}

func NewMovieHandler(movies *usecase.MovieService) *MovieHandler {
	return &MovieHandler{movies: movies}
}

// MovieListResponse is one page of catalog results.
type MovieListResponse struct {
	Movies []MovieResponse `json:"movies"`
	PageMeta
}

func parseMovieFilter(c *gin.Context) (port.MovieFilter, bool) {
	var filter port.MovieFilter

	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "year must be an integer"))
			return filter, false
		}
		filter.Year = &year
	}

	if raw := c.Query("imdb"); raw != "" {
		imdb, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "imdb must be a number"))
			return filter, false
		}
		filter.IMDb = &imdb
	}

	filter.Search = c.Query("search")

	switch sort := c.Query("sort_by"); sort {
	case "", string(port.MovieSortID):
		filter.SortBy = port.MovieSortID
	case string(port.MovieSortPrice), string(port.MovieSortTime), string(port.MovieSortVotes):
		filter.SortBy = port.MovieSort(sort)
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "sort_by must be one of: id, price, time, votes"))
		return filter, false
	}

	switch order := c.Query("order"); order {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "order must be asc or desc"))
		return filter, false
	}

	return filter, true
}

// List handles GET /movies with filtering, search, sorting, and pagination.
func (h *MovieHandler) List(c *gin.Context) {
	page, perPage, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	filter, ok := parseMovieFilter(c)
	if !ok {
		return
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	result, err := h.movies.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not list movies."))
		return
	}

	meta := newPageMeta(c, page, perPage, result.TotalItems)
	if result.TotalItems == 0 || page > meta.TotalPages {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "No movies found on this page."))
		return
	}

	resp := MovieListResponse{Movies: make([]MovieResponse, 0, len(result.Movies)), PageMeta: meta}
	for i := range result.Movies {
		resp.Movies = append(resp.Movies, toMovieResponse(&result.Movies[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /movies/:id.
func (h *MovieHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	movie, err := h.movies.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "Movie not found."},
		}, http.StatusInternalServerError, "Could not load movie.")
		return
	}

	c.JSON(http.StatusOK, toMovieResponse(movie))
}

func movieInputFromRequest(req MovieRequest) (port.MovieInput, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return port.MovieInput{}, err
	}

	return port.MovieInput{
		Movie: domain.Movie{
			Name:        req.Name,
			Year:        req.Year,
			Time:        req.Time,
			IMDb:        req.IMDb,
			Votes:       req.Votes,
			MetaScore:   req.MetaScore,
			Gross:       req.Gross,
			Description: req.Description,
			Price:       price,
		},
		Certification: req.Certification,
		Genres:        req.Genres,
		Stars:         req.Stars,
		Directors:     req.Directors,
	}, nil
}

// Create handles POST /movies. Moderator or admin only.
func (h *MovieHandler) Create(c *gin.Context) {
	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid movie payload"))
		return
	}

	input, err := movieInputFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "price must be a decimal string"))
		return
	}

	movie, err := h.movies.Create(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMovieNameRequired, Status: http.StatusBadRequest, Message: "Movie name is required."},
			{Err: usecase.ErrCertificationRequired, Status: http.StatusBadRequest, Message: "Certification is required."},
			{Err: usecase.ErrMovieExists, Status: http.StatusConflict, Message: "A movie with this name, year, and duration already exists."},
		}, http.StatusInternalServerError, "Could not create movie.")
		return
	}

	c.JSON(http.StatusCreated, toMovieResponse(movie))
}

// Update handles PUT /movies/:id. Moderator or admin only.
func (h *MovieHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid movie payload"))
		return
	}

	input, err := movieInputFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "price must be a decimal string"))
		return
	}
	input.Movie.ID = id

	movie, err := h.movies.Update(c.Request.Context(), input.Movie)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMovieNameRequired, Status: http.StatusBadRequest, Message: "Movie name is required."},
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "Movie not found."},
			{Err: usecase.ErrMovieExists, Status: http.StatusConflict, Message: "A movie with this name, year, and duration already exists."},
		}, http.StatusInternalServerError, "Could not update movie.")
		return
	}

	c.JSON(http.StatusOK, toMovieResponse(movie))
}

// Delete handles DELETE /movies/:id. Moderator or admin only.
func (h *MovieHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.movies.Delete(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "Movie not found."},
			{Err: usecase.ErrMovieInCart, Status: http.StatusConflict, Message: "Movie is present in user carts and cannot be deleted."},
		}, http.StatusInternalServerError, "Could not delete movie.")
		return
	}

	c.Status(http.StatusNoContent)
}

// parseIDParam reads the :id path parameter as a positive integer.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid id"))
		return 0, false
	}
	return id, true
}
