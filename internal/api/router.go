// Package api wires the HTTP routes of the complaint service.
package api

import (
	"time"

	"actionflow/backend/internal/api/handler"
	"actionflow/backend/internal/api/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	JWTSecret  []byte
	CORSOrigin string
	// UploadDir is served under /uploads when the local file store is used.
	UploadDir string
	// FilingLimiter throttles complaint filing per client; nil disables it.
	FilingLimiter *middleware.RateLimiter
}

// DefaultFilingLimiter allows a burst of 10 filings, then one every 6s.
func DefaultFilingLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(rate.Every(6*time.Second), 10)
}

func NewRouter(h *handler.Handler, opts Options, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.AccessLog(logger))

	if opts.CORSOrigin != "" {
		corsCfg := cors.Config{
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if opts.CORSOrigin == "*" {
			corsCfg.AllowAllOrigins = true
			corsCfg.AllowCredentials = false
		} else {
			corsCfg.AllowOrigins = []string{opts.CORSOrigin}
		}
		r.Use(cors.New(corsCfg))
		h.AllowOrigin(opts.CORSOrigin)
	}

	r.GET("/health", h.Health)
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(opts.JWTSecret))
	{
		filing := []gin.HandlerFunc{h.FileComplaint}
		if opts.FilingLimiter != nil {
			filing = append([]gin.HandlerFunc{opts.FilingLimiter.Middleware()}, filing...)
		}
		v1.POST("/complaints", filing...)
		v1.GET("/complaints", h.ListComplaints)
		v1.GET("/complaints/export", h.ExportComplaints)
		v1.GET("/complaints/categories", h.Categories)
		v1.GET("/complaints/:id", h.GetComplaint)
		v1.POST("/complaints/:id/assign", h.AssignComplaint)
		v1.POST("/complaints/:id/resolve", h.ResolveComplaint)
		v1.POST("/complaints/:id/feedback", h.SubmitFeedback)

		v1.GET("/dashboard", h.Dashboard)

		v1.GET("/resolvers", h.ListResolvers)
		v1.POST("/resolvers", h.CreateResolver)
		v1.PUT("/resolvers/:id", h.UpdateResolver)
		v1.POST("/resolvers/:id/activate", h.ActivateResolver)
		v1.POST("/resolvers/:id/deactivate", h.DeactivateResolver)

		v1.GET("/users", h.ListUsers)
		v1.POST("/users/:id/activate", h.ActivateUser)
		v1.POST("/users/:id/deactivate", h.DeactivateUser)

		v1.GET("/events", h.ServeEvents)
	}
	return r
}
