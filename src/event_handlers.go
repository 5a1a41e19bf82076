package main

import (
	"campusbites/src/db"
	"campusbites/src/models"
	"campusbites/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

func eventBrowseHandlers(g *gin.Engine) *gin.Engine {
	g.
		GET("/", func(ctx *gin.Context) {
			db := db.GetDb()
			var events []models.Event
			err := db.
				Model(&models.Event{}).
				Order("date asc, start_time asc").
				Limit(200).
				Find(&events).
				Error
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		}).
		GET("/search/name/:name", func(ctx *gin.Context) {
			name := ctx.Params.ByName("name")
			db := db.GetDb()
			var events []models.Event
			err := db.
				Model(&models.Event{}).
				Where("name ILIKE ?", "%"+name+"%").
				Limit(100).
				Find(&events).
				Error
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		}).
		GET("/search/food/:food", func(ctx *gin.Context) {
			food := ctx.Params.ByName("food")
			db := db.GetDb()
			var events []models.Event
			err := db.
				Model(&models.Event{}).
				Where("food @> ?::jsonb", types.StringArray{food}).
				Limit(100).
				Find(&events).
				Error
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		})
	return g
}

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/event/", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			event := models.Event{
				Name:         body.Name,
				Slug:         slug.Make(body.Name),
				Description:  body.Description,
				Organization: body.Organization,
				Location:     body.Location,
				Food:         body.Food,
				Date:         body.Date,
				StartTime:    body.StartTime,
				EndTime:      body.EndTime,
			}
			db := db.GetDb()
			if err := db.Create(&event).Error; err != nil {
				log.Printf("Error creating event: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "could not create event"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": []models.Event{event}})
		}).
		POST("/events/:id/food", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateFoodItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			db := db.GetDb()
			var event models.Event
			if err := db.Where(&models.Event{ID: params.ID}).First(&event).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"detail": "event not found"})
				return
			}
			item := models.FoodItem{
				Name:        body.Name,
				Quantity:    body.Quantity,
				StockLevel:  types.StockLevel(body.StockLevel),
				DietaryTags: body.DietaryTags,
				Description: body.Description,
				EventID:     event.ID,
			}
			if err := db.Create(&item).Error; err != nil {
				log.Printf("Error creating food item: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "could not create food item"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": []models.FoodItem{item}})
		})
	return g
}
