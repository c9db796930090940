package main

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safe2gether/auth"
	"safe2gether/config"
	"safe2gether/email"
	"safe2gether/googlemaps"
	"safe2gether/handlers"
	"safe2gether/metrics"
	"safe2gether/middleware"
	"safe2gether/services"
	"safe2gether/supabase"
)

const (
	EndPointHealth  = "/health"
	EndPointMetrics = "/metrics"
)

func main() {
	cfg := config.Load()

	log.Info("Starting the safe2gether backend...")

	metrics.Register()

	// External collaborators
	store := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.HTTPTimeout)
	maps := googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeLanguage, cfg.GeocodeCountry, cfg.HTTPTimeout)
	mailer := email.NewSender(cfg)
	clock := clockwork.NewRealClock()

	// Auth plumbing
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenExpiry)
	resetStore := auth.NewMemoryResetStore(cfg.ResetTokenTTL, clock)

	// Services
	veracity := services.NewVeracityAggregator(store)
	reportsService := services.NewReportsService(store, maps, mailer)
	reactionsService := services.NewReactionsService(store, veracity)
	notesService := services.NewNotesService(store, veracity)
	commentsService := services.NewCommentsService(store)
	attachmentsService := services.NewAttachmentsService(store)
	followersService := services.NewFollowersService(store)
	areasService := services.NewAreasService(store, mailer, clock)
	rankingService := services.NewRankingService(store, clock)
	usersService := services.NewUsersService(store, tokens, resetStore, mailer)

	// Handlers
	reportsHandler := handlers.NewReportsHandler(reportsService)
	reactionsHandler := handlers.NewReactionsHandler(reactionsService)
	notesHandler := handlers.NewNotesHandler(notesService)
	commentsHandler := handlers.NewCommentsHandler(commentsService)
	attachmentsHandler := handlers.NewAttachmentsHandler(attachmentsService)
	followersHandler := handlers.NewFollowersHandler(followersService)
	areasHandler := handlers.NewAreasHandler(areasService)
	districtsHandler := handlers.NewDistrictsHandler(rankingService)
	usersHandler := handlers.NewUsersHandler(usersService)
	authHandler := handlers.NewAuthHandler(usersService)
	placesHandler := handlers.NewPlacesHandler(maps)

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET(EndPointHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "safe2gether-backend",
		})
	})
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	authRequired := middleware.AuthRequired(tokens)

	reports := router.Group("/Reportes")
	{
		reports.GET("", reportsHandler.List)
		reports.GET("/:id", reportsHandler.Get)
		reports.GET("/usuario/:user_id", reportsHandler.ListByUser)
		reports.POST("", reportsHandler.Create)
		reports.POST("/backfill-distritos", reportsHandler.BackfillDistricts)
		reports.PUT("/:id", reportsHandler.Update)
		reports.PATCH("/:id", reportsHandler.Update)
		reports.DELETE("/:id", reportsHandler.Delete)
	}

	reactions := router.Group("/Reacciones")
	{
		reactions.GET("", reactionsHandler.List)
		reactions.GET("/:id", reactionsHandler.Get)
		reactions.GET("/reporte/:report_id", reactionsHandler.ListByReport)
		reactions.GET("/usuario/:user_id", reactionsHandler.ListByUser)
		reactions.POST("", reactionsHandler.Create)
		reactions.PUT("/:id", reactionsHandler.Update)
		reactions.PATCH("/:id", reactionsHandler.Update)
		reactions.DELETE("/:id", reactionsHandler.Delete)
	}

	notes := router.Group("/Notas_Comunidad")
	{
		notes.GET("", notesHandler.List)
		notes.GET("/:id", notesHandler.Get)
		notes.GET("/reporte/:report_id", notesHandler.ListByReport)
		notes.GET("/usuario/:user_id", notesHandler.ListByUser)
		notes.POST("", notesHandler.Create)
		notes.PUT("/:id", notesHandler.Update)
		notes.PATCH("/:id", notesHandler.Update)
		notes.DELETE("/:id", notesHandler.Delete)
	}

	comments := router.Group("/Comentarios")
	{
		comments.GET("", commentsHandler.List)
		comments.GET("/:id", commentsHandler.Get)
		comments.GET("/reporte/:report_id", commentsHandler.ListByReport)
		comments.GET("/usuario/:user_id", commentsHandler.ListByUser)
		comments.POST("", commentsHandler.Create)
		comments.PUT("/:id", commentsHandler.Update)
		comments.PATCH("/:id", commentsHandler.Update)
		comments.DELETE("/:id", commentsHandler.Delete)
	}

	attachments := router.Group("/Adjuntos")
	{
		attachments.GET("", attachmentsHandler.List)
		attachments.GET("/batch", attachmentsHandler.ListByReports)
		attachments.GET("/:id", attachmentsHandler.Get)
		attachments.GET("/reporte/:report_id", attachmentsHandler.ListByReport)
		attachments.POST("", attachmentsHandler.Create)
		attachments.PUT("/:id", attachmentsHandler.Update)
		attachments.PATCH("/:id", attachmentsHandler.Update)
		attachments.DELETE("/:id", attachmentsHandler.Delete)
	}

	followers := router.Group("/Seguidores")
	{
		followers.GET("", followersHandler.List)
		followers.GET("/seguidores/:user_id", followersHandler.ListFollowers)
		followers.GET("/siguiendo/:user_id", followersHandler.ListFollowing)
		followers.GET("/estado/:follower_id/:followed_id", followersHandler.IsFollowing)
		followers.POST("", followersHandler.Follow)
		followers.DELETE("/:follower_id/:followed_id", followersHandler.Unfollow)
		followers.DELETE("/id/:id", followersHandler.Delete)
	}

	areas := router.Group("/AreasInteres")
	{
		areas.GET("", areasHandler.List)
		areas.GET("/:id", areasHandler.Get)
		areas.GET("/usuario/:user_id", areasHandler.ListByUser)
		areas.GET("/:id/riesgo", areasHandler.Risk)
		areas.POST("", areasHandler.Create)
		areas.POST("/notificar", areasHandler.Notify)
		areas.PUT("/:id", areasHandler.Update)
		areas.PATCH("/:id", areasHandler.Update)
		areas.DELETE("/:id", areasHandler.Delete)
	}

	districts := router.Group("/distritos")
	{
		districts.GET("/ranking", districtsHandler.Ranking)
		districts.GET("/estadisticas", districtsHandler.Statistics)
	}

	users := router.Group("/users")
	{
		users.GET("", usersHandler.List)
		users.GET("/batch", usersHandler.ListByIDs)
		users.GET("/:id", usersHandler.Get)
		users.POST("", usersHandler.Create)
		users.PUT("/:id", authRequired, usersHandler.Update)
		users.PATCH("/:id", authRequired, usersHandler.Update)
		users.DELETE("/:id", authRequired, usersHandler.Delete)
	}

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/password-reset", authHandler.RequestPasswordReset)
		authRoutes.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	}

	places := router.Group("/places")
	{
		places.GET("/reverse-geocode", placesHandler.ReverseGeocode)
		places.GET("/distrito", placesHandler.District)
		places.GET("/autocomplete", placesHandler.Autocomplete)
	}

	log.Infof("Safe2gether backend starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
