package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ymfit/studio-app/internal/api"
	"ymfit/studio-app/internal/calsync"
	"ymfit/studio-app/internal/config"
	"ymfit/studio-app/internal/repository/mongo"
	"ymfit/studio-app/internal/service"
	"ymfit/studio-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Studio App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureTrainingPlanIndexes(ctx, appDB.Collection("training_plans"))
		mongo.EnsurePlanDayIndexes(ctx, appDB.Collection("plan_days"))
		mongo.EnsurePlanExerciseIndexes(ctx, appDB.Collection("plan_exercises"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureSyncRecordIndexes(ctx, appDB.Collection("sync_records"))
		mongo.EnsureMealPlanIndexes(ctx, appDB.Collection("meal_plans"))
		mongo.EnsureMeasurementIndexes(ctx, appDB.Collection("measurements"))
		mongo.EnsureCardIndexes(ctx, appDB.Collection("trainee_cards"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	trainingPlanRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	planDayRepo := mongo.NewMongoPlanDayRepository(appDB)
	planExerciseRepo := mongo.NewMongoPlanExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	syncRecordRepo := mongo.NewMongoSyncRecordRepository(appDB)
	mealPlanRepo := mongo.NewMongoMealPlanRepository(appDB)
	measurementRepo := mongo.NewMongoMeasurementRepository(appDB)
	cardRepo := mongo.NewMongoCardRepository(appDB)

	// --- Calendar Sync ---
	var syncer *calsync.Syncer
	if cfg.Calendar.Enabled {
		log.Println("Calendar sync enabled, initializing client...")
		calendarClient := calsync.NewHTTPClient(cfg.Calendar)
		syncer = calsync.NewSyncer(calendarClient, syncRecordRepo, workoutRepo, cardRepo, cfg.Calendar.CalendarID, cfg.Calendar.EventDuration)
	} else {
		log.Println("Calendar sync disabled.")
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	trainerService := service.NewTrainerService(userRepo, cardRepo)
	exerciseService := service.NewExerciseService(exerciseRepo)
	planService := service.NewPlanService(trainingPlanRepo, planDayRepo, planExerciseRepo, userRepo)
	workoutService := service.NewWorkoutService(workoutRepo, userRepo, syncer)
	mealPlanService := service.NewMealPlanService(mealPlanRepo, userRepo)
	measurementService := service.NewMeasurementService(measurementRepo, userRepo, fileStorage)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, trainerService, exerciseService, planService, workoutService, mealPlanService, measurementService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
