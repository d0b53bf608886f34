package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/catalog"
)

// CatalogHandler serves the public, read-only movie and showtime listings.
type CatalogHandler struct {
	Catalog catalog.Accessor
}

func NewCatalogHandler(cat catalog.Accessor) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

// ListMovies handles GET /v1/movies.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Catalog.ListMovies())
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.Catalog.GetMovie(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListShowtimes handles GET /v1/movies/:id/showtimes.
func (h *CatalogHandler) ListShowtimes(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	if _, err := h.Catalog.GetMovie(id); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	return c.JSON(http.StatusOK, h.Catalog.ListShowtimes(id))
}

// GetShowtime handles GET /v1/showtimes/:id.
func (h *CatalogHandler) GetShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	s, err := h.Catalog.GetShowtime(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	}
	return c.JSON(http.StatusOK, s)
}
