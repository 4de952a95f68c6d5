package patient

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hearcase/hearcase/internal/domain/phase"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/pkg/pagination"
)

type Handler struct {
	svc    *Service
	phases *phase.Service
}

func NewHandler(svc *Service, phases *phase.Service) *Handler {
	return &Handler{svc: svc, phases: phases}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients", auth.RequireRole(auth.Coordinators()...))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/phase/:phaseId", h.ListByPhase)
	g.GET("/:patientId", h.Get)
	g.PUT("/:patientId", h.Update)
	g.POST("/:patientId/advance-phase", h.Advance)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search:  c.QueryParam("search"),
		City:    c.QueryParam("city"),
		Country: c.QueryParam("country"),
		Status:  c.QueryParam("status"),
	}
	if v := c.QueryParam("phase_id"); v != "" {
		f.PhaseID, _ = strconv.ParseInt(v, 10, 64)
	}
	scope := auth.ScopeFor(auth.PrincipalFromContext(c.Request().Context()))
	items, total, err := h.svc.List(c.Request().Context(), f, scope, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) ListByPhase(c echo.Context) error {
	phaseID, err := strconv.ParseInt(c.Param("phaseId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid phase id")
	}
	status := c.QueryParam("status")
	if status == "" {
		status = phase.StatusInProgress
	}
	pg := pagination.FromContext(c)
	scope := auth.ScopeFor(auth.PrincipalFromContext(c.Request().Context()))
	items, total, err := h.svc.ListByPhase(c.Request().Context(), phaseID, status, scope, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	updated, err := h.svc.Update(c.Request().Context(), id, in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, updated)
}

type advanceRequest struct {
	NextPhaseID int64 `json:"next_phase_id"`
}

func (h *Handler) Advance(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	pp, err := h.phases.Advance(c.Request().Context(), id, req.NextPhaseID, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pp)
}
