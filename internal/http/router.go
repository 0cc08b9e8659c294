package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/metrics"
	"github.com/ahsrafiq/glass-chat-craft/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	userH *UserHandler,
	brandH *BrandHandler,
	draftH *DraftHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, JSON content-type y metricas.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware(), metricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := r.Group("/users")
	users.POST("", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	authed := r.Group("/", JWTAuthMiddleware(jwtServ))
	authed.GET("/me", userH.Me)

	brands := authed.Group("/brands")
	brands.POST("", brandH.CreateBrand)
	brands.GET("", brandH.ListBrands)
	brands.GET("/:id", brandH.GetBrand)

	drafts := authed.Group("/drafts")
	drafts.POST("", draftH.GenerateDraft)
	drafts.GET("", draftH.ListDrafts)
	drafts.GET("/:id", draftH.GetDraft)
	drafts.GET("/:id/transcript", draftH.GetTranscript)
	drafts.GET("/:id/preview", draftH.GetPreview)
	drafts.POST("/:id/feedback", draftH.SubmitFeedback)
	drafts.DELETE("/:id/feedback/:feedbackID", draftH.DeleteFeedback)
	drafts.POST("/:id/send-test", draftH.SendTest)
	drafts.DELETE("/:id", draftH.DeleteDraft)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// metricsMiddleware registra la latencia por ruta. Usa la ruta con
// parametros sin resolver para acotar la cardinalidad de labels.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
