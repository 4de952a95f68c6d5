package dashboard

import (
	"net/http"
	"time"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/dashboard")
	g.GET("/overview", h.Overview)
	g.GET("/supplies", h.Supplies, auth.RequireRole(auth.RoleAdmin, auth.RoleSupplyManager))
	g.GET("/users", h.Users, auth.RequireRole(auth.RoleAdmin))
	g.GET("/analytics", h.Analytics, auth.RequireRole(auth.Coordinators()...))
}

func (h *Handler) Overview(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	ov, err := h.svc.Overview(c.Request().Context(), p)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *Handler) Supplies(c echo.Context) error {
	ov, err := h.svc.Supplies(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *Handler) Users(c echo.Context) error {
	ov, err := h.svc.Users(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *Handler) Analytics(c echo.Context) error {
	var dr DateRange
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		dr.Start = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		dr.End = &t
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	an, err := h.svc.Analytics(c.Request().Context(), p, dr)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, an)
}
