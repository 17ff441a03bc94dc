package api

import (
	"net/http"

	"liftlog/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers onto the router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	sessionService service.SessionService,
	proteinService service.ProteinService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	sessionHandler := NewSessionHandler(sessionService)
	proteinHandler := NewProteinHandler(proteinService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		// --- Workout & Exercise Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)

			workoutGroup.GET("/:workoutId/exercises", workoutHandler.ListExercises)
			workoutGroup.POST("/:workoutId/exercises", workoutHandler.CreateExercise)
			workoutGroup.PATCH("/:workoutId/exercises/:exerciseId", workoutHandler.UpdateExercise)
			workoutGroup.DELETE("/:workoutId/exercises/:exerciseId", workoutHandler.DeleteExercise)

			// --- Workout Mode (session continuity) ---
			workoutGroup.GET("/active", sessionHandler.GetActiveSession)
			workoutGroup.POST("/:workoutId/session", sessionHandler.BeginSession)
			workoutGroup.GET("/:workoutId/session", sessionHandler.GetResumeState)
			workoutGroup.POST("/:workoutId/session/advance", sessionHandler.Advance)
			workoutGroup.DELETE("/:workoutId/session", sessionHandler.ExitSession)
		}

		// --- Protein Routes ---
		proteinGroup := protected.Group("/protein")
		{
			proteinGroup.GET("", proteinHandler.GetProtein)
			proteinGroup.PATCH("", proteinHandler.UpdateProtein)
		}
	}
}
