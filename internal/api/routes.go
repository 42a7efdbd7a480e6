package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, appPassword string) {
	router.Use(CORSMiddleware())

	api := router.Group("/api", RequirePassword(appPassword))
	{
		api.GET("/summary", handler.GetSummary)

		api.GET("/apt/transactions", handler.GetTransactions)
		api.GET("/apt/names", handler.GetAptNames)
		api.POST("/apt/refresh", handler.RefreshRegion)
		api.GET("/apt/recent-sales", handler.GetRecentSales)
		api.GET("/apt/stats", handler.GetRegionStats)

		api.GET("/favorites", handler.GetFavorites)
		api.POST("/favorites", handler.AddFavorite)
		api.DELETE("/favorites", handler.DeleteFavoriteByIndex)
		api.DELETE("/favorites/:id", handler.DeleteFavorite)

		api.PUT("/order", handler.UpdateOrder)

		api.GET("/districts", handler.GetDistricts)
		api.GET("/markets", handler.GetMarkets)
		api.GET("/news", handler.SearchNews)

		api.GET("/models", handler.ListModels)
		api.POST("/report", handler.GenerateReport)

		api.GET("/config", handler.GetConfig)
		api.PUT("/config", handler.UpdateConfig)
	}
}
