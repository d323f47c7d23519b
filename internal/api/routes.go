package api

import (
	"net/http"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	exerciseService service.ExerciseService,
	planService service.PlanService,
	workoutService service.WorkoutService,
	mealPlanService service.MealPlanService,
	measurementService service.MeasurementService,
) {
	authHandler := NewAuthHandler(authService)
	trainerHandler := NewTrainerHandler(trainerService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	planHandler := NewPlanHandler(planService)
	workoutHandler := NewWorkoutHandler(workoutService)
	mealPlanHandler := NewMealPlanHandler(mealPlanService)
	measurementHandler := NewMeasurementHandler(measurementService)

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
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Catalog (trainer-owned) ---
		exerciseGroup := protected.Group("/exercises")
		exerciseGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetTrainerExercises)
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
		}

		// --- Workout Logging ---
		// Saves are trainer-only; the handler additionally verifies the
		// caller is the trainer named on the workout and manages the
		// trainee. Reads are open to both sides of the relationship.
		protected.POST("/workouts", RoleMiddleware(domain.RoleTrainer), workoutHandler.SaveWorkout)
		protected.GET("/workouts/:workoutId", workoutHandler.GetWorkout)
		protected.GET("/trainees/:traineeId/workouts", workoutHandler.ListWorkoutsForMonth)

		// --- Trainee-visible Reads ---
		protected.GET("/trainees/:traineeId/meal-plans", mealPlanHandler.GetMealPlans)
		protected.GET("/trainees/:traineeId/measurements", measurementHandler.GetMeasurements)
		protected.GET("/measurements/:measurementId/photos", measurementHandler.GetPhotoDownloadURL)

		// --- Trainer-only Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// Roster
			trainerGroup.POST("/trainees", trainerHandler.AddTrainee)
			trainerGroup.GET("/trainees", trainerHandler.GetTrainees)

			// Session cards
			trainerGroup.POST("/trainees/:traineeId/card", trainerHandler.IssueCard)
			trainerGroup.GET("/trainees/:traineeId/card", trainerHandler.GetActiveCard)
			trainerGroup.POST("/trainees/:traineeId/card/consume", trainerHandler.ConsumeCardSession)

			// Plan builder
			trainerGroup.PUT("/trainees/:traineeId/plan", planHandler.SavePlan)
			trainerGroup.GET("/trainees/:traineeId/plan", planHandler.GetPlan)

			// Nutrition
			trainerGroup.POST("/trainees/:traineeId/meal-plans", mealPlanHandler.CreateMealPlan)
			trainerGroup.PUT("/meal-plans/:planId", mealPlanHandler.UpdateMealPlan)
			trainerGroup.DELETE("/meal-plans/:planId", mealPlanHandler.DeleteMealPlan)

			// Measurements and progress photos
			trainerGroup.POST("/trainees/:traineeId/measurements", measurementHandler.CreateMeasurement)
			trainerGroup.PUT("/measurements/:measurementId", measurementHandler.UpdateMeasurement)
			trainerGroup.DELETE("/measurements/:measurementId", measurementHandler.DeleteMeasurement)
			trainerGroup.POST("/measurements/:measurementId/photos", measurementHandler.RequestPhotoUpload)
			trainerGroup.POST("/measurements/:measurementId/photos/confirm", measurementHandler.ConfirmPhotoUpload)
		}
	}
}
