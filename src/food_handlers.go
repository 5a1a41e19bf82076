package main

import (
	"campusbites/src/db"
	"campusbites/src/lib"
	"campusbites/src/models"
	"campusbites/src/types"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func foodHandlers(g *gin.Engine) *gin.Engine {
	g.
		GET("/events/:id/food", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if cached, ok := lib.GetCachedEventFood(ctx.Request.Context(), params.ID); ok {
				ctx.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
				return
			}
			db := db.GetDb()
			var rows []models.FoodItem
			err := db.
				Model(&models.FoodItem{}).
				Where(&models.FoodItem{EventID: params.ID}).
				Order("id asc").
				Find(&rows).
				Error
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			payload := gin.H{"data": rows, "count": len(rows)}
			if raw, err := json.Marshal(payload); err == nil {
				lib.CacheEventFood(ctx.Request.Context(), params.ID, string(raw))
			}
			ctx.JSON(http.StatusOK, payload)
		})
	return g
}

func invalidateFoodCache(ctx *gin.Context, eventId uint) {
	if eventId == 0 {
		return
	}
	lib.InvalidateEventFood(ctx.Request.Context(), eventId)
}

func invalidateFoodCacheForFood(ctx *gin.Context, foodId uint) {
	db := db.GetDb()
	var food models.FoodItem
	if err := db.Select("event_id").Where(&models.FoodItem{ID: foodId}).First(&food).Error; err != nil {
		log.Printf("Could not resolve event for food %d: %s\n", foodId, err.Error())
		return
	}
	invalidateFoodCache(ctx, food.EventID)
}
