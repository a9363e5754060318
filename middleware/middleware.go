package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/commercelens/pixel-backend/internal/model/response/wrapper"
	service "github.com/commercelens/pixel-backend/internal/service/apiclient"
	redisService "github.com/commercelens/pixel-backend/internal/service/redis"
	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware защищает read-эндпоинты дашборда
func APIKeyMiddleware(apiClientService service.APIClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")

		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{
				Message: "X-API-Key header is required",
				Success: false,
			})
			c.Abort()
			return
		}

		client, err := apiClientService.ValidateAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{
				Message: "Invalid or inactive API key",
				Success: false,
			})
			c.Abort()
			return
		}

		c.Set("api_client", client)
		c.Set("api_client_id", client.ID.String())

		c.Next()
	}
}

// RateLimitMiddleware ограничивает пиксель по IP. Fails open: если редис
// недоступен, события важнее лимита.
func RateLimitMiddleware(redis redisService.RedisService, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redis == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:pixel:%s", c.ClientIP())

		allowed, err := redis.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
