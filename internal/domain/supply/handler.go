package supply

import (
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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/supplies", auth.RequireRole(auth.RoleAdmin, auth.RoleSupplyManager))
	g.GET("/categories", h.Categories)
	g.POST("/categories", h.CreateCategory)
	g.GET("/transaction-types", h.TransactionTypes)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.PUT("/:supplyId/stock", h.UpdateStock)
	g.GET("/:supplyId/transactions", h.Transactions)
	g.GET("/:supplyId", h.Get)
	g.PUT("/:supplyId", h.Update)
	g.DELETE("/:supplyId", h.Delete)
}

func supplyID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("supplyId"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid supply id")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	sup, err := h.svc.Create(c.Request().Context(), in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, sup)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		LowStock: c.QueryParam("low_stock") == "true",
	}
	supplies, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(supplies, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := supplyID(c)
	if err != nil {
		return err
	}
	sup, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, sup)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := supplyID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	sup, err := h.svc.Update(c.Request().Context(), id, in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, sup)
}

func (h *Handler) UpdateStock(c echo.Context) error {
	id, err := supplyID(c)
	if err != nil {
		return err
	}
	var in StockInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	sup, err := h.svc.UpdateStock(c.Request().Context(), id, in, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, sup)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := supplyID(c)
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, p.UserID); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Transactions(c echo.Context) error {
	id, err := supplyID(c)
	if err != nil {
		return err
	}
	txs, err := h.svc.Transactions(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, txs)
}

func (h *Handler) Categories(c echo.Context) error {
	cats, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, cats)
}

type categoryRequest struct {
	Name string `json:"category_name"`
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	cat, err := h.svc.CreateCategory(c.Request().Context(), req.Name, p.UserID)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) TransactionTypes(c echo.Context) error {
	types, err := h.svc.TransactionTypes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), domainerr.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, types)
}
