// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"vereinsportal/internal/auth"
	"vereinsportal/internal/events"
	"vereinsportal/internal/registrations"
	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/shared/database"
	"vereinsportal/internal/waitlist"
	"vereinsportal/pkg/lock"
	"vereinsportal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier waitlist.Notifier

	waitlistService waitlist.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier waitlist.Notifier) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// WaitlistService exposes the wired waitlist service so the caller can
// attach the expiry sweeper. Valid after SetupRoutes.
func (r *Router) WaitlistService() waitlist.Service {
	return r.waitlistService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	api.Use(ratelimit.Middleware(r.buildRateLimiter()))
	{
		r.setupAuthRoutes(api)
		r.setupDomainRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "vereinsportal",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "vereinsportal",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)

	auth.SetupAuthRoutes(rg, authController, r.config)
}

// setupDomainRoutes wires events, registrations and the waitlist engine.
// The three services form a cycle on paper (events trigger promotion,
// promotion creates registrations, registrations recompute events), broken
// by injecting the promoter into the event service after construction.
func (r *Router) setupDomainRoutes(rg *gin.RouterGroup) {
	db := r.db.GetPostgreSQL()
	locker := r.buildLocker()

	eventRepo := events.NewRepository(db)
	eventService := events.NewService(eventRepo, locker)

	registrationRepo := registrations.NewRepository(db)
	registrationService := registrations.NewService(registrationRepo, eventService, locker)

	waitlistRepo := waitlist.NewRepository(db, r.db.GetRedisClient())
	waitlistService := waitlist.NewService(
		waitlistRepo,
		eventService,
		registrationService,
		r.notifier,
		locker,
		r.waitlistSettings,
	)
	eventService.SetPromoter(waitlistService)
	r.waitlistService = waitlistService

	events.SetupEventRoutes(rg, events.NewController(eventService), r.config)
	registrations.SetupRegistrationRoutes(rg, registrations.NewController(registrationService), r.config)
	waitlist.SetupWaitlistRoutes(rg, waitlist.NewController(waitlistService), r.config)
}

// waitlistSettings snapshots the waitlist configuration for one engine run
func (r *Router) waitlistSettings() waitlist.Settings {
	return waitlist.Settings{
		Secret:        r.config.Waitlist.ConfirmationSecret,
		Deadline:      r.config.Waitlist.ConfirmationDeadline(),
		AutoPromotion: r.config.Waitlist.EnableAutoPromotion,
		PublicBaseURL: r.config.PublicBaseURL,
		AdminEmail:    r.config.Waitlist.AdminEmail,
	}
}

// buildLocker picks the per-event lock implementation. With Redis available
// the lock is shared across replicas; without it a process-local mutex
// still serializes writers within one instance.
func (r *Router) buildLocker() lock.EventLocker {
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		return lock.NewRedisLocker(redisClient, 30*time.Second)
	}
	return lock.NewKeyedMutex()
}

func (r *Router) buildRateLimiter() *ratelimit.RateLimiter {
	redisClient := r.db.GetRedisClient()
	if !r.config.RateLimit.Enabled || redisClient == nil {
		return nil
	}
	return ratelimit.NewRateLimiter(redisClient, &ratelimit.Config{
		Enabled:         true,
		WindowDuration:  r.config.RateLimit.WindowDuration,
		DefaultRequests: r.config.RateLimit.DefaultRequests,
		ConfirmRequests: r.config.RateLimit.ConfirmRequests,
		AdminRequests:   r.config.RateLimit.AdminRequests,
	})
}
