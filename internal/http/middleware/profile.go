package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/model"
)

const (
	profileHeader     = "profile_id"
	profileContextKey = "profile"
)

type ProfileLoader interface {
	GetProfile(ctx context.Context, id uint) (*model.Profile, error)
}

// Profile resolves the caller from the profile_id header. Requests without a
// known profile are rejected with an empty 401.
func Profile(loader ProfileLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(profileHeader))
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		profile, err := loader.GetProfile(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			log.Error().Err(err).Uint64("profile_id", id).Msg("load profile failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(profileContextKey, *profile)
		c.Next()
	}
}

func MustProfile(c *gin.Context) (model.Profile, bool) {
	value, ok := c.Get(profileContextKey)
	if !ok {
		return model.Profile{}, false
	}
	profile, ok := value.(model.Profile)
	return profile, ok
}
