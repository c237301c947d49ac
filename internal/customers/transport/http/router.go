package http

import (
	"shophub/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func Router(h *CustomerHandler, jwtSecret, serviceToken string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/token", h.IssueToken)

	cu := r.Group("/customers", auth.JWT(jwtSecret))
	{
		cu.POST("", h.Create)
		cu.GET("", h.List)
		cu.GET("/:id", h.Get)
		cu.PUT("/:id", h.Update)
		cu.PATCH("/:id", h.Update)
		cu.DELETE("/:id", h.Delete)
	}

	// Межсервисный эндпоинт доступен только по сервисному токену.
	internal := r.Group("/internal", auth.ServiceToken(serviceToken))
	{
		internal.GET("/customers/:id", h.GetInternal)
	}

	return r
}
