package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/contractor-payments/internal/idempotency"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request repeated with the
// same Idempotency-Key. Keys are scoped to the caller and route. Requests
// without the header pass through.
func Idempotency(store idempotency.Store, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if raw == "" || store == nil {
			c.Next()
			return
		}
		if len(raw) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "idempotency key is too long"})
			return
		}

		key := fmt.Sprintf("%s:%s:%s:%s", strings.TrimSpace(c.GetHeader(profileHeader)), c.Request.Method, c.Request.URL.Path, raw)
		ctx := c.Request.Context()

		record, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			if errors.Is(err, idempotency.ErrInProgress) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is in progress"})
				return
			}
			log.Error().Err(err).Msg("reserve idempotency key failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if record != nil {
			c.Header(ReplayedHeader, "true")
			c.Data(record.Status, record.ContentType, record.Body)
			c.Abort()
			return
		}

		// Exits without a storable response, including a handler panic
		// unwinding towards gin.Recovery, free the key for a retry.
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Error().Err(err).Msg("release idempotency key failed")
			}
		}()

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		// The handler has run; a failed Complete must not free the key for a
		// second execution.
		completed = true
		err = store.Complete(context.WithoutCancel(ctx), key, idempotency.Record{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}, ttl)
		if err != nil {
			log.Error().Err(err).Msg("store idempotency record failed")
		}
	}
}
