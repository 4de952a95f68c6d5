package record

import (
	"fmt"
	"net/http"
	"strconv"

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

// RegisterRoutes builds the /phase1, /phase2, and /phase3 route trees from
// the registry. Each type gets create, list, and update routes under its
// slug; each phase gets an aggregate per-patient data route.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	for phaseID := int64(1); phaseID <= 3; phaseID++ {
		g := api.Group(fmt.Sprintf("/phase%d", phaseID))
		for _, t := range Types {
			if t.Phase != phaseID {
				continue
			}
			t := t
			guard := auth.RequireRole(t.Roles...)
			g.POST("/"+t.Slug, h.create(t), guard)
			g.GET("/"+t.Slug, h.list(t), guard)
			g.PUT("/"+t.Slug+"/:recordId", h.update(t), guard)
		}
		g.GET("/patient/:patientId", h.phaseData(phaseID),
			auth.RequireRole(PhaseRoles(phaseID)...))
	}
}

func (h *Handler) create(t Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in CreateInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		p := auth.PrincipalFromContext(c.Request().Context())
		rec, err := h.svc.Create(c.Request().Context(), t, in, p.UserID)
		if err != nil {
			return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
		}
		return c.JSON(http.StatusCreated, rec)
	}
}

func (h *Handler) list(t Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		pg := pagination.FromContext(c)
		var patientID int64
		if v := c.QueryParam("patient_id"); v != "" {
			patientID, _ = strconv.ParseInt(v, 10, 64)
		}
		recs, total, err := h.svc.List(c.Request().Context(), t, patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, pg))
	}
}

func (h *Handler) update(t Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("recordId"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
		}
		var in UpdateInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		p := auth.PrincipalFromContext(c.Request().Context())
		rec, err := h.svc.Update(c.Request().Context(), t, id, in, p.UserID)
		if err != nil {
			return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
		}
		return c.JSON(http.StatusOK, rec)
	}
}

func (h *Handler) phaseData(phaseID int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
		}
		data, err := h.svc.PhaseData(c.Request().Context(), patientID, phaseID)
		if err != nil {
			return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
		}
		return c.JSON(http.StatusOK, data)
	}
}
