package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (uint, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := userIDVal.(uint)
	return userID, ok
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	email, exists := c.Get("user_email")
	if !exists {
		return ""
	}
	return email.(string)
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) enum.Role {
	role, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	s, ok := role.(string)
	if !ok {
		return ""
	}
	return enum.Role(s)
}

// GetUserCaps extracts the capability set from the Gin context
func GetUserCaps(c *gin.Context) []string {
	caps, exists := c.Get("user_caps")
	if !exists {
		return nil
	}
	out, ok := caps.([]string)
	if !ok {
		return nil
	}
	return out
}

// HasCap reports whether the request's user holds a capability
func HasCap(c *gin.Context, cap enum.Capability) bool {
	for _, have := range GetUserCaps(c) {
		if have == string(cap) {
			return true
		}
	}
	return false
}

// IsOwner reports whether the request's user is an owner
func IsOwner(c *gin.Context) bool {
	return GetUserRole(c) == enum.RoleOwner
}

// GetStoreID extracts the current store ID from the Gin context
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

// ParseIDParam parses a uint path parameter
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
