package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/audit", auth.RequireRole(auth.RoleAdmin))
	g.GET("", h.List)
	g.GET("/stats/summary", h.Stats)
	g.GET("/:logId", h.Get)
}

func filterFromQuery(c echo.Context) ListFilter {
	f := ListFilter{
		Table:  c.QueryParam("table_name"),
		Action: c.QueryParam("action_type"),
	}
	if v := c.QueryParam("user_id"); v != "" {
		f.ActorID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.QueryParam("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.StartDate = &t
		}
	}
	if v := c.QueryParam("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.EndDate = &t
		}
	}
	return f
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	logs, total, err := h.svc.List(c.Request().Context(), filterFromQuery(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(logs, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("logId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid log id")
	}
	log, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, log)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, stats)
}
