package authn

import (
	"net/http"

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

// RegisterRoutes wires login onto the public group and refresh/logout onto
// the authenticated one.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/logout", h.Logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	session, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) Refresh(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	token, err := h.svc.Refresh(c.Request().Context(), p)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Logout(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Logout(c.Request().Context(), p.UserID); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
