package routes

import (
	"os_service_api/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathOrders = "/orders"
)

func addOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	orders := rg.Group(PathOrders)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/diagnosis", h.StartDiagnosis)
		orders.POST("/:id/parts", h.AddPart)
		orders.POST("/:id/services", h.AddService)
		orders.POST("/:id/quote", h.GenerateQuote)
		orders.PATCH("/:id/quote/approve", h.ApproveQuote)
		orders.PATCH("/:id/quote/reject", h.RejectQuote)
		orders.PATCH("/:id/finish", h.FinishExecution)
		orders.PATCH("/:id/deliver", h.Deliver)
		orders.PATCH("/:id/cancel", h.Cancel)
	}
}
