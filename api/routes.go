package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/clipdeck-api/api/accounts"
	"github.com/killallgit/clipdeck-api/api/clips"
	"github.com/killallgit/clipdeck-api/api/health"
	"github.com/killallgit/clipdeck-api/api/posts"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/api/version"
	"github.com/killallgit/clipdeck-api/api/videos"
	"github.com/killallgit/clipdeck-api/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Register public routes (no rate limiting, no identity)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if deps == nil {
		deps = &types.Dependencies{}
	}

	// All resource routes require a caller identity
	v1 := engine.Group("/api/v1")
	v1.Use(RequireUser())

	limitFor := func(endpoint string) int {
		if rps, ok := cfg.RateLimiting.Endpoints[endpoint]; ok && rps > 0 {
			return rps
		}
		if rps, ok := cfg.RateLimiting.Endpoints["default"]; ok && rps > 0 {
			return rps
		}
		return 120
	}

	group := func(path, endpoint string) *gin.RouterGroup {
		g := v1.Group(path)
		if cfg.RateLimiting.Enabled {
			rps := limitFor(endpoint)
			g.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, rps, rps*2))
		}
		return g
	}

	// Video registration hits the metadata resolver, keep it tighter
	videosGroup := group("/videos", "videos")
	videos.RegisterRoutes(videosGroup, deps)
	videosGroup.POST("/:uuid/clips", clips.CreateClipForVideo(deps))

	// Clip CRUD is cheap; processing itself runs on the worker pool
	clips.RegisterRoutes(group("/clips", "clips"), deps)

	accounts.RegisterRoutes(group("/accounts", "default"), deps)

	// Publishing opens a browser per job, keep the API side tight too
	posts.RegisterRoutes(group("/posts", "posts"), deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
