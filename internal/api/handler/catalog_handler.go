package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// CatalogHandler serves categories, genres and titles.
type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func slugFilter(c echo.Context) (ports.SlugFilter, error) {
	page, limit, err := pageQuery(c)
	return ports.SlugFilter{Search: c.QueryParam("search"), Page: page, Limit: limit}, err
}

// ── Categories ────────────────────────────────────────────────────────────────

// ListCategories handles GET /categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        search  query     string  false  "Name substring"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  pageResponse[domain.Category]
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	filter, err := slugFilter(c)
	if err != nil {
		return err
	}
	result, err := h.catalog.ListCategories(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// CreateCategory handles POST /categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sluggedRequest  true  "Category"
// @Success      201   {object}  domain.Category
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req sluggedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.catalog.CreateCategory(c.Request().Context(), actorFrom(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /categories/:slug.
//
// @Summary      Delete a category
// @Tags         categories
// @Security     BearerAuth
// @Param        slug  path  string  true  "Category slug"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /categories/{slug} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	if err := h.catalog.DeleteCategory(c.Request().Context(), actorFrom(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ── Genres ────────────────────────────────────────────────────────────────────

// ListGenres handles GET /genres.
//
// @Summary      List genres
// @Tags         genres
// @Produce      json
// @Param        search  query     string  false  "Name substring"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  pageResponse[domain.Genre]
// @Router       /genres [get]
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	filter, err := slugFilter(c)
	if err != nil {
		return err
	}
	result, err := h.catalog.ListGenres(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// CreateGenre handles POST /genres.
//
// @Summary      Create a genre
// @Tags         genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sluggedRequest  true  "Genre"
// @Success      201   {object}  domain.Genre
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /genres [post]
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var req sluggedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	genre, err := h.catalog.CreateGenre(c.Request().Context(), actorFrom(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, genre)
}

// DeleteGenre handles DELETE /genres/:slug.
//
// @Summary      Delete a genre
// @Tags         genres
// @Security     BearerAuth
// @Param        slug  path  string  true  "Genre slug"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /genres/{slug} [delete]
func (h *CatalogHandler) DeleteGenre(c echo.Context) error {
	if err := h.catalog.DeleteGenre(c.Request().Context(), actorFrom(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ── Titles ────────────────────────────────────────────────────────────────────

// ListTitles handles GET /titles.
//
// @Summary      List titles
// @Tags         titles
// @Produce      json
// @Param        name      query     string  false  "Name substring"
// @Param        genre     query     string  false  "Genre slug"
// @Param        category  query     string  false  "Category slug"
// @Param        year      query     int     false  "Exact year"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  pageResponse[domain.Title]
// @Failure      400       {object}  errorResponse
// @Router       /titles [get]
func (h *CatalogHandler) ListTitles(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	filter := ports.TitleFilter{
		Name:     c.QueryParam("name"),
		Genre:    c.QueryParam("genre"),
		Category: c.QueryParam("category"),
		Page:     page,
		Limit:    limit,
	}
	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewValidationError("year", "must be an integer")
		}
		filter.Year = year
	}

	result, err := h.catalog.ListTitles(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// GetTitle handles GET /titles/:title_id.
//
// @Summary      Get a title
// @Tags         titles
// @Produce      json
// @Param        title_id  path      int  true  "Title id"
// @Success      200       {object}  domain.Title
// @Failure      404       {object}  errorResponse
// @Router       /titles/{title_id} [get]
func (h *CatalogHandler) GetTitle(c echo.Context) error {
	id, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	title, err := h.catalog.GetTitle(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, title)
}

// CreateTitle handles POST /titles.
//
// @Summary      Create a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTitleRequest  true  "Title; genre and category by slug"
// @Success      201   {object}  domain.Title
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /titles [post]
func (h *CatalogHandler) CreateTitle(c echo.Context) error {
	var req createTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	title, err := h.catalog.CreateTitle(c.Request().Context(), actorFrom(c), toTitleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, title)
}

// UpdateTitle handles PATCH /titles/:title_id.
//
// @Summary      Update a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      int                 true  "Title id"
// @Param        body      body      updateTitleRequest  true  "Fields to change; an empty category clears it"
// @Success      200       {object}  domain.Title
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /titles/{title_id} [patch]
func (h *CatalogHandler) UpdateTitle(c echo.Context) error {
	id, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	var req updateTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	title, err := h.catalog.UpdateTitle(c.Request().Context(), actorFrom(c), id, toTitlePatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, title)
}

// DeleteTitle handles DELETE /titles/:title_id.
//
// @Summary      Delete a title with its reviews and comments
// @Tags         titles
// @Security     BearerAuth
// @Param        title_id  path  int  true  "Title id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /titles/{title_id} [delete]
func (h *CatalogHandler) DeleteTitle(c echo.Context) error {
	id, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteTitle(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
