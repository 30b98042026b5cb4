package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/GunarsK-portfolio/notes-service/internal/cache"
	"github.com/gin-gonic/gin"
)

// CacheHandler exposes cache administration endpoints.
type CacheHandler struct {
	cache *cache.Service
}

// NewCacheHandler creates a new CacheHandler instance.
func NewCacheHandler(cacheService *cache.Service) *CacheHandler {
	return &CacheHandler{cache: cacheService}
}

// Health godoc
// @Summary Cache health check
// @Description Verify the cache is reachable with a write/read round trip
// @Tags cache
// @Security BearerAuth
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /cache/health [get]
func (h *CacheHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	probe := fmt.Sprintf("health:probe:%d", time.Now().UnixNano())
	if err := h.cache.Set(ctx, probe, "ok", 10*time.Second); err != nil {
		respondError(c, apperror.NewUnavailable("cache is unavailable", err))
		return
	}

	var value string
	found, err := h.cache.Get(ctx, probe, &value)
	if err != nil {
		respondError(c, apperror.NewUnavailable("cache is unavailable", err))
		return
	}
	if !found || value != "ok" {
		c.JSON(http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Message: "cache round trip failed",
		})
		return
	}

	if err := h.cache.Delete(ctx, probe); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "cache is healthy", gin.H{"status": "UP"})
}

// GetKey godoc
// @Summary Inspect a cache key
// @Tags cache
// @Security BearerAuth
// @Produce json
// @Param key path string true "Cache key"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /cache/key/{key} [get]
func (h *CacheHandler) GetKey(c *gin.Context) {
	key := c.Param("key")

	var raw json.RawMessage
	found, err := h.cache.Get(c.Request.Context(), key, &raw)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Message: "cache key not found",
		})
		return
	}
	respondSuccess(c, http.StatusOK, "cache key retrieved successfully", gin.H{
		"key":   key,
		"value": raw,
	})
}

// DeleteKey godoc
// @Summary Delete a cache key
// @Tags cache
// @Security BearerAuth
// @Produce json
// @Param key path string true "Cache key"
// @Success 200 {object} APIResponse
// @Router /cache/key/{key} [delete]
func (h *CacheHandler) DeleteKey(c *gin.Context) {
	key := c.Param("key")
	if err := h.cache.Delete(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "cache key deleted successfully", gin.H{"key": key})
}

// KeyTTL godoc
// @Summary Remaining TTL of a cache key
// @Tags cache
// @Security BearerAuth
// @Produce json
// @Param key path string true "Cache key"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /cache/key/{key}/ttl [get]
func (h *CacheHandler) KeyTTL(c *gin.Context) {
	key := c.Param("key")

	exists, err := h.cache.Exists(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Message: "cache key not found",
		})
		return
	}

	ttl, err := h.cache.TTL(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "cache key TTL retrieved successfully", gin.H{
		"key":        key,
		"ttlSeconds": int64(ttl.Seconds()),
	})
}

// Clear godoc
// @Summary Flush the cache
// @Description Remove every cached entry
// @Tags cache
// @Security BearerAuth
// @Produce json
// @Success 200 {object} APIResponse
// @Router /cache/clear [post]
func (h *CacheHandler) Clear(c *gin.Context) {
	if err := h.cache.FlushAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "cache cleared successfully", nil)
}
