package http

import (
	"shophub/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func Router(orders *OrderHandler, products *ProductHandler, jwtSecret, serviceToken string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Каталог доступен только пользователям с JWT, заказы — и пользователям,
	// и сервисам с межсервисным токеном.
	p := r.Group("/products", auth.JWT(jwtSecret))
	{
		p.POST("", products.Create)
		p.GET("", products.List)
		p.GET("/:id", products.Get)
		p.PATCH("/:id", products.Patch)
	}

	o := r.Group("/orders", auth.Any(jwtSecret, serviceToken))
	{
		o.POST("", orders.Create)
		o.GET("", orders.List)
		o.GET("/:id", orders.Get)
		o.POST("/:id/confirm", orders.Confirm)
		o.POST("/:id/cancel", orders.Cancel)
	}

	return r
}
