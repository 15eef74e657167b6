package routes

import (
	"net/http"
	_ "os_service_api/docs" // generated by swag init
	"os_service_api/internal/adapter/http/handlers"
	"os_service_api/pkg/correlation"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const serverName = "os-service-api"

// NewRouter wires middlewares, Swagger and the /v1 routes.
func NewRouter(orderHandler *handlers.OrderHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	setMiddlewares(router, logger)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addOrderRoutes(v1, orderHandler)
	return router
}

// NewServer builds the HTTP server; main owns its lifecycle. Requests are
// traced and measured by otelhttp before reaching handler.
func NewServer(port string, handler http.Handler) *http.Server {
	traced := otelhttp.NewHandler(handler, serverName,
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithMeterProvider(otel.GetMeterProvider()),
	)
	return &http.Server{
		Addr:              ":" + port,
		Handler:           traced,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func setMiddlewares(router *gin.Engine, logger *zap.Logger) {
	router.Use(spanRoute())
	router.Use(correlation.Middleware())
	router.Use(requestLogger(logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("[http][router] recovered from panic",
			zap.Any("panic", recovered),
			zap.String(correlation.LogField, correlation.FromGin(c)),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}
