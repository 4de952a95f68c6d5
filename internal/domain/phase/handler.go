package phase

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/phases")
	g.GET("", h.List)
	g.GET("/patient/:patientId", h.PatientPhases)

	g.PUT("/patient/:patientId/phase/:phaseId/complete", h.Complete,
		auth.RequireRole(auth.Coordinators()...))
}

func (h *Handler) List(c echo.Context) error {
	phases, err := h.svc.Phases(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, phases)
}

func (h *Handler) PatientPhases(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pps, err := h.svc.PatientPhases(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pps)
}

func (h *Handler) Complete(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	phaseID, err := strconv.ParseInt(c.Param("phaseId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid phase id")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	pp, err := h.svc.Complete(c.Request().Context(), patientID, phaseID, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pp)
}
