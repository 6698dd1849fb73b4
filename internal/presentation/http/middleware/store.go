package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"github.com/hoshigumi/clubpos-api/internal/domain/repository"
	infraRepo "github.com/hoshigumi/clubpos-api/internal/infrastructure/repository"
	"github.com/hoshigumi/clubpos-api/internal/presentation/http/dto/response"
)

// StoreIDHeader selects the current store for multi-store users
const StoreIDHeader = "X-Store-ID"

// StoreMiddleware resolves the current store for the request: the
// X-Store-ID header when present, otherwise the user's primary store.
// Membership is enforced for everyone but owners.
func StoreMiddleware(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}
		userID, ok := userIDVal.(uint)
		if !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		user, err := userRepo.GetWithStores(c.Request.Context(), userID)
		if err != nil || user == nil {
			response.Unauthorized(c, "User not found")
			c.Abort()
			return
		}

		var storeID uint
		if header := c.GetHeader(StoreIDHeader); header != "" {
			parsed, err := strconv.ParseUint(header, 10, 64)
			if err != nil || parsed == 0 {
				response.BadRequest(c, "Invalid store header")
				c.Abort()
				return
			}
			storeID = uint(parsed)
		} else if user.PrimaryStoreID != nil {
			storeID = *user.PrimaryStoreID
		}

		if storeID == 0 {
			response.BadRequest(c, "No store selected")
			c.Abort()
			return
		}

		if user.Role != enum.RoleOwner && !user.MemberOf(storeID) {
			response.Forbidden(c, "Access denied to this store")
			c.Abort()
			return
		}

		// Set store ID in Gin context (for middleware/handlers)
		c.Set("store_id", storeID)

		// Also set store ID in request context (for services/repositories)
		ctx := infraRepo.WithStore(c.Request.Context(), storeID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireStore ensures a valid store context exists
func RequireStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetStoreID(c); !ok {
			response.BadRequest(c, "Store context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetStoreID retrieves the store ID from gin context
func GetStoreID(c *gin.Context) (uint, bool) {
	storeIDVal, exists := c.Get("store_id")
	if !exists {
		return 0, false
	}
	storeID, ok := storeIDVal.(uint)
	if !ok || storeID == 0 {
		return 0, false
	}
	return storeID, true
}
