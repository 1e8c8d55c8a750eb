package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/config"
)

func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowedOrigins := []string{
		"http://localhost:5173",
	}

	if cfg.OriginURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.OriginURL)
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", CartSessionHeader},
		ExposeHeaders:    []string{"Content-Length", CartSessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
