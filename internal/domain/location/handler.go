package location

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the location trees. Reads are open to any
// authenticated user; writes are admin only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/locations")
	admin := auth.RequireRole(auth.RoleAdmin)

	g.GET("/countries", h.Countries)
	g.POST("/countries", h.CreateCountry, admin)
	g.PUT("/countries/:countryId", h.UpdateCountry, admin)
	g.DELETE("/countries/:countryId", h.DeleteCountry, admin)

	g.GET("/cities", h.Cities)
	g.POST("/cities", h.CreateCity, admin)
	g.PUT("/cities/:cityId", h.UpdateCity, admin)
	g.DELETE("/cities/:cityId", h.DeleteCity, admin)

	g.GET("/user-locations", h.UserLocations, admin)
	g.POST("/user-locations", h.AssignUserLocation, admin)
	g.DELETE("/user-locations/:userLocationId", h.RemoveUserLocation, admin)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) Countries(c echo.Context) error {
	countries, err := h.svc.Countries(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, countries)
}

func (h *Handler) CreateCountry(c echo.Context) error {
	var in CountryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	country, err := h.svc.CreateCountry(c.Request().Context(), in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, country)
}

func (h *Handler) UpdateCountry(c echo.Context) error {
	id, err := pathID(c, "countryId")
	if err != nil {
		return err
	}
	var in CountryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	country, err := h.svc.UpdateCountry(c.Request().Context(), id, in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, country)
}

func (h *Handler) DeleteCountry(c echo.Context) error {
	id, err := pathID(c, "countryId")
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.DeleteCountry(c.Request().Context(), id, p.UserID); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Cities(c echo.Context) error {
	var countryID int64
	if v := c.QueryParam("country_id"); v != "" {
		countryID, _ = strconv.ParseInt(v, 10, 64)
	}
	cities, err := h.svc.Cities(c.Request().Context(), countryID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, cities)
}

func (h *Handler) CreateCity(c echo.Context) error {
	var in CityInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	city, err := h.svc.CreateCity(c.Request().Context(), in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, city)
}

func (h *Handler) UpdateCity(c echo.Context) error {
	id, err := pathID(c, "cityId")
	if err != nil {
		return err
	}
	var in CityInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	city, err := h.svc.UpdateCity(c.Request().Context(), id, in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, city)
}

func (h *Handler) DeleteCity(c echo.Context) error {
	id, err := pathID(c, "cityId")
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.DeleteCity(c.Request().Context(), id, p.UserID); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UserLocations(c echo.Context) error {
	var userID int64
	if v := c.QueryParam("user_id"); v != "" {
		userID, _ = strconv.ParseInt(v, 10, 64)
	}
	uls, err := h.svc.UserLocations(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, uls)
}

func (h *Handler) AssignUserLocation(c echo.Context) error {
	var in UserLocationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	ul, err := h.svc.AssignUserLocation(c.Request().Context(), in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, ul)
}

func (h *Handler) RemoveUserLocation(c echo.Context) error {
	id, err := pathID(c, "userLocationId")
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.RemoveUserLocation(c.Request().Context(), id, p.UserID); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.NoContent(http.StatusNoContent)
}
