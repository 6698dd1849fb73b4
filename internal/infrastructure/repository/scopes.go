package repository

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey string

const (
	// StoreIDKey is the context key for the current store ID
	StoreIDKey ctxKey = "store_id"
	// SkipStoreScopeKey is the context key for skipping store scope (multi-store owners)
	SkipStoreScopeKey ctxKey = "skip_store_scope"
)

// StoreScope returns a GORM scope that filters by store
// This should be applied to all queries for store-scoped entities
// If SkipStoreScopeKey is true in context (owner viewing all stores), returns all records
func StoreScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skipScope, ok := ctx.Value(SkipStoreScopeKey).(bool); ok && skipScope {
			return db
		}

		storeID, ok := ctx.Value(StoreIDKey).(uint)
		if !ok {
			// Fail-safe: return no results if store context missing
			// This prevents accidental cross-store data access
			return db.Where("1 = 0")
		}
		return db.Where("store_id = ?", storeID)
	}
}

// WithSkipStoreScope adds skip store scope flag to context (for owners)
func WithSkipStoreScope(ctx context.Context, skip bool) context.Context {
	return context.WithValue(ctx, SkipStoreScopeKey, skip)
}

// WithStore adds store ID to context
func WithStore(ctx context.Context, storeID uint) context.Context {
	return context.WithValue(ctx, StoreIDKey, storeID)
}

// GetStoreID extracts store ID from context
func GetStoreID(ctx context.Context) (uint, bool) {
	storeID, ok := ctx.Value(StoreIDKey).(uint)
	return storeID, ok
}
