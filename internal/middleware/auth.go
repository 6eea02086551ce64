// internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

const buyerKey = "buyer"

// CurrentBuyer returns the buyer set by AuthRequired or OptionalAuth. An
// anonymous request yields the zero BuyerContext.
func CurrentBuyer(c *gin.Context) services.BuyerContext {
	if v, exists := c.Get(buyerKey); exists {
		if buyer, ok := v.(services.BuyerContext); ok {
			return buyer
		}
	}
	return services.BuyerContext{}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthRequired(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			if c.GetHeader("Authorization") == "" {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			} else {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			}
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		userID, err := claims.SubjectID()
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		buyer, err := identity.ResolveBuyer(c.Request.Context(), userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to resolve buyer")
			if errors.Is(err, services.ErrNotAuthenticated) {
				utils.UnauthorizedResponse(c, "")
			} else {
				utils.InternalErrorResponse(c, "")
			}
			c.Abort()
			return
		}

		buyer.Email = claims.Email
		c.Set(buyerKey, buyer)
		c.Set("user_id", userID.String())
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentBuyer(c).IsAdmin() {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the buyer when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		userID, err := claims.SubjectID()
		if err != nil {
			c.Next()
			return
		}

		buyer, err := identity.ResolveBuyer(c.Request.Context(), userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Serving anonymous prices, buyer lookup failed")
			c.Next()
			return
		}

		buyer.Email = claims.Email
		c.Set(buyerKey, buyer)
		c.Set("user_id", userID.String())
		c.Next()
	}
}
