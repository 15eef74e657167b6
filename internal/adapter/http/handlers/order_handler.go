package handlers

import (
	"context"
	"errors"
	"net/http"
	request "os_service_api/internal/adapter/http/dto/request"
	response "os_service_api/internal/adapter/http/dto/response"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase"
	"os_service_api/internal/usecase/interfaces"
	"os_service_api/pkg"
	"os_service_api/pkg/correlation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:generate mockgen -source=../../../usecase/order_usecase.go -destination=mocks/order_usecase_mock.go -package=mocks

var (
	errInvalidOrderPayload = pkg.NewDomainErrorSimple("INVALID_ORDER_INPUT", "Invalid order payload", http.StatusBadRequest)
)

// OrderHandler exposes the work order lifecycle over HTTP.
type OrderHandler struct {
	usecase usecase.IOrderUseCase
	logger  *zap.Logger
}

func NewOrderHandler(uc usecase.IOrderUseCase, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{usecase: uc, logger: logger}
}

// CreateOrder godoc
// @Summary      Open a work order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body      request.CreateOrderRequest  true  "Vehicle"
// @Success      201      {object}  response.OrderResponse
// @Failure      400      {object}  pkg.HTTPError
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var payload request.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.Create(c.Request.Context(), payload.VehicleID)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromOrder(order))
}

// GetOrder godoc
// @Summary      Get a work order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.OrderResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

// AddPart godoc
// @Summary      Add a part or consumable to an order in diagnosis
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Order ID"
// @Param        payload  body      request.AddPartRequest  true  "Part"
// @Success      200      {object}  response.OrderResponse
// @Failure      422      {object}  pkg.HTTPError
// @Router       /orders/{id}/parts [post]
func (h *OrderHandler) AddPart(c *gin.Context) {
	var payload request.AddPartRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}
	part, err := payload.ToPartItem()
	if err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.AddPart(c.Request.Context(), c.Param("id"), part)
	if err != nil {
		h.fail(c, "add-part", err)
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

// AddService godoc
// @Summary      Add a service to an order in diagnosis
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      request.AddServiceRequest  true  "Service"
// @Success      200      {object}  response.OrderResponse
// @Failure      422      {object}  pkg.HTTPError
// @Router       /orders/{id}/services [post]
func (h *OrderHandler) AddService(c *gin.Context) {
	var payload request.AddServiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}
	service, err := payload.ToServiceItem()
	if err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.AddService(c.Request.Context(), c.Param("id"), service)
	if err != nil {
		h.fail(c, "add-service", err)
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

func (h *OrderHandler) StartDiagnosis(c *gin.Context) {
	h.transition(c, "start-diagnosis", h.usecase.StartDiagnosis)
}

func (h *OrderHandler) GenerateQuote(c *gin.Context) {
	h.transition(c, "generate-quote", h.usecase.GenerateQuote)
}

// ApproveQuote godoc
// @Summary      Approve the quote and start execution
// @Description  Orders with parts or consumables stay awaiting a stock reduction until the stock service answers.
// @Tags         orders
// @Produce      json
// @Param        id                path      string  true   "Order ID"
// @Param        X-Correlation-ID  header    string  false  "Saga correlation id"
// @Success      200               {object}  response.OrderResponse
// @Failure      409               {object}  pkg.HTTPError
// @Failure      422               {object}  pkg.HTTPError
// @Router       /orders/{id}/quote/approve [patch]
func (h *OrderHandler) ApproveQuote(c *gin.Context) {
	correlationID := correlation.FromGin(c)
	order, err := h.usecase.ApproveQuote(c.Request.Context(), c.Param("id"), correlationID)
	if err != nil {
		h.fail(c, "approve-quote", err)
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

func (h *OrderHandler) RejectQuote(c *gin.Context) {
	h.transition(c, "reject-quote", h.usecase.RejectQuote)
}

func (h *OrderHandler) FinishExecution(c *gin.Context) {
	h.transition(c, "finish-execution", h.usecase.FinishExecution)
}

func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, "deliver", h.usecase.Deliver)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, "cancel", h.usecase.Cancel)
}

func (h *OrderHandler) transition(
	c *gin.Context,
	action string,
	apply func(ctx context.Context, id string) (*entities.Order, error),
) {
	order, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, action, err)
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

func (h *OrderHandler) fail(c *gin.Context, action string, err error) {
	appErr := mapOrderError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error("[order][handler] request failed",
			zap.String("action", action),
			zap.String("order_id", c.Param("id")),
			zap.String(correlation.LogField, correlation.FromGin(c)),
			zap.Error(err),
		)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapOrderError(err error) *pkg.AppError {
	var rule *entities.DomainRuleError
	switch {
	case errors.Is(err, usecase.ErrInvalidOrderID), errors.Is(err, usecase.ErrInvalidVehicleID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrOrderNotFound):
		return pkg.NewDomainErrorSimple("ORDER_NOT_FOUND", "Order not found", http.StatusNotFound)
	case errors.Is(err, interfaces.ErrOrderAlreadyExists):
		return pkg.NewDomainErrorSimple("ORDER_ALREADY_EXISTS", "Order already exists", http.StatusConflict)
	case errors.Is(err, interfaces.ErrOrderVersionConflict):
		return pkg.NewDomainErrorSimple("ORDER_VERSION_CONFLICT", "Order was changed concurrently, reload and retry", http.StatusConflict)
	case errors.As(err, &rule):
		return pkg.NewDomainError(rule.Code, rule.Message, err, http.StatusUnprocessableEntity)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
