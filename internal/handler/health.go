package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the SMTP breaker state and
// the email dead letter depth;
// never exposes credentials or internals. A nil rdb reports "disabled".
func Health(db *gorm.DB, rdb redis.Cmdable, smtp *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if rdb != nil && redisStatus == "connected" {
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil {
				body["dlq_email"] = n
			}
		}
		if smtp != nil {
			body["smtp"] = smtp.State().String()
		}
		c.JSON(status, body)
	}
}
