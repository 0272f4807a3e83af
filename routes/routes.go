package routes

import (
	"Showdown/controllers"
	"Showdown/middleware"
	"Showdown/services/lobby"
	"Showdown/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient, store *lobby.Store) {
	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.GET("/rules", controllers.GetRules)

	api.POST("/signup", controllers.SignUp(db))

	api.POST("/login", controllers.Login(db))

	api.GET("/users/:username", controllers.GetUserPublicInfo(db))

	// Pull-side directory for the first paint of the join page; the socket
	// push takes over once the connection is up
	api.GET("/lobbies", controllers.GetAvailableLobbies(store))

	api.GET("/lobbies/:url_id", controllers.GetLobbyInfo(store))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.POST("/lobbies", controllers.CreateLobby(store))
	}
}
