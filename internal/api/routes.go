package api

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/identity"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(
	router *gin.Engine,
	verifier identity.Verifier,
	workoutService service.WorkoutService,
	merge config.MergeConfig,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) {
	workoutHandler := NewWorkoutHandler(workoutService, merge, log)
	authMiddleware := AuthMiddleware(verifier, m, log)

	router.Use(RequestLogger(log), m.Middleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		// GET / - the caller's workouts, provisioning the user on first read
		protected.GET("", workoutHandler.GetWorkouts)
		// PUT / - merge one dated workout into the caller's log
		protected.PUT("", workoutHandler.UpdateWorkout)
	}
}
