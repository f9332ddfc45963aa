package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusattend/internal/auth"
	"campusattend/internal/httpmiddleware"
	"campusattend/internal/metrics"
)

// RouterOptions carries the middleware knobs owned by main.
type RouterOptions struct {
	RateLimitPerMin int
	Revoker         auth.TokenRevoker
}

// NewRouter builds the gin engine with the full middleware chain and route
// table.
func (h *Handler) NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(metrics.GinMiddleware())
	r.Use(httpmiddleware.NewRateLimiter(opts.RateLimitPerMin, opts.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", auth.Require(h.cfg.JWTSigningKey, h.cfg.JWTIssuer, opts.Revoker))

	authed.POST("/auth/logout", h.Logout)
	authed.POST("/auth/refresh", h.Refresh)
	authed.GET("/auth/profile", h.Profile)
	authed.PUT("/auth/profile", h.UpdateProfile)
	authed.POST("/auth/change-password", h.ChangePassword)

	adminOnly := auth.RequireRole(auth.RoleAdmin)
	staffOnly := auth.RequireRole(auth.RoleInstructor, auth.RoleAdmin)
	studentOnly := auth.RequireRole(auth.RoleStudent)

	authed.GET("/users", adminOnly, h.ListUsers)
	authed.POST("/users", adminOnly, h.CreateUser)

	authed.GET("/courses", h.ListCourses)
	authed.POST("/courses", adminOnly, h.CreateCourse)
	authed.GET("/courses/:id", h.GetCourse)
	authed.PUT("/courses/:id", adminOnly, h.UpdateCourse)
	authed.DELETE("/courses/:id", adminOnly, h.DeleteCourse)
	authed.POST("/courses/:id/enroll", adminOnly, h.EnrollStudent)
	authed.GET("/courses/:id/sessions", h.ListSessions)
	authed.POST("/courses/:id/sessions", staffOnly, h.CreateSession)
	authed.PUT("/sessions/:id", staffOnly, h.UpdateSession)
	authed.DELETE("/sessions/:id", staffOnly, h.DeleteSession)

	authed.POST("/checkin", studentOnly, h.CheckIn)
	authed.GET("/history", studentOnly, h.History)
	authed.GET("/statistics", studentOnly, h.Statistics)
	authed.GET("/session/:id/attendance", staffOnly, h.SessionAttendance)
	authed.GET("/course/:id/attendance-summary", staffOnly, h.CourseAttendanceSummary)

	authed.POST("/courses/:id/feedback", studentOnly, h.SubmitFeedback)
	authed.GET("/courses/:id/feedback", staffOnly, h.CourseFeedback)
	authed.GET("/my-feedback", studentOnly, h.MyFeedback)
	authed.DELETE("/feedback/:id", adminOnly, h.DeleteFeedback)

	return r
}

// corsMiddleware allows browser requests from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
