package handlers

import (
	"chatiip-backend/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts
type Handlers struct {
	Documents *DocumentHandler
	Chat      *ChatHandler
	News      *NewsHandler
	Auth      *AuthHandler
}

// RegisterRoutes mounts the API under /api
func RegisterRoutes(r gin.IRouter, h Handlers, am *middleware.AuthMiddleware) {
	api := r.Group("/api")
	authed := am.RequireAuth()
	admin := []gin.HandlerFunc{authed, am.RequireAdmin()}

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", authed, h.Auth.Me)
	}

	adminUsers := api.Group("/admin", admin...)
	{
		adminUsers.GET("/users", h.Auth.ListUsers)
		adminUsers.GET("/users/:id", h.Auth.GetUser)
	}

	docs := api.Group("/docs")
	{
		docs.GET("", h.Documents.ListDocuments)
		docs.GET("/stats/categories", h.Documents.CategoryStats)
		docs.GET("/:ref", h.Documents.GetDocument)
		docs.GET("/:ref/download", h.Documents.DownloadFile)
		docs.POST("", append(admin, h.Documents.CreateDocument)...)
		docs.PUT("/:ref", append(admin, h.Documents.UpdateDocument)...)
		docs.DELETE("/:ref", append(admin, h.Documents.DeleteDocument)...)
	}

	news := api.Group("/news")
	{
		news.GET("", h.News.ListNews)
		news.GET("/category/:cat", h.News.ListByCategory)
		news.GET("/:ref", h.News.GetNews)
		news.POST("", authed, h.News.CreateNews)
		news.PUT("/:ref", authed, h.News.UpdateNews)
		news.DELETE("/:ref", authed, h.News.DeleteNews)
	}

	api.POST("/chat", h.Chat.Ask)

	logs := api.Group("/logs")
	{
		logs.POST("", h.Chat.RecordLog)
		logs.GET("", append(admin, h.Chat.ListLogs)...)
	}
}
