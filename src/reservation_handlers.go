package main

import (
	"campusbites/src/common"
	"campusbites/src/types"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		PUT("/reserve/", func(ctx *gin.Context) {
			var body types.ReserveRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			profileId, ok := requestProfileID(ctx, body.ProfileID)
			if !ok {
				return
			}
			reservation, err := common.ReserveFood(profileId, body.FoodID, body.Quantity)
			if err != nil {
				status := http.StatusUnprocessableEntity
				if errors.Is(err, common.ErrFoodNotFound) {
					status = http.StatusNotFound
				} else if errors.Is(err, common.ErrNotEnoughStock) {
					status = http.StatusConflict
				}
				ctx.JSON(status, gin.H{"detail": err.Error()})
				return
			}
			invalidateFoodCache(ctx, reservation.Food.EventID)
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reserve/cancel", func(ctx *gin.Context) {
			var body types.ReserveRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			profileId, ok := requestProfileID(ctx, body.ProfileID)
			if !ok {
				return
			}
			if err := common.CancelReservation(profileId, body.FoodID, body.Quantity); err != nil {
				status := http.StatusUnprocessableEntity
				if errors.Is(err, common.ErrNoActiveReservation) || errors.Is(err, common.ErrFoodNotFound) {
					status = http.StatusNotFound
				}
				ctx.JSON(status, gin.H{"detail": err.Error()})
				return
			}
			invalidateFoodCacheForFood(ctx, body.FoodID)
			ctx.Status(http.StatusNoContent)
		}).
		GET("/profiles/:id/reservations", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			profileId, err := uuid.Parse(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": "invalid profile id"})
				return
			}
			if ctx.GetString("profile_id") != profileId.String() {
				ctx.JSON(http.StatusForbidden, gin.H{"detail": "cannot read another profile's reservations"})
				return
			}
			reservations, foodRows, err := common.GetProfileReservations(profileId)
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"reserved_items": reservations,
				"food_rows":      foodRows,
			})
		})
	return g
}

// requestProfileID resolves the acting profile. A profile_id in the body is
// allowed only when it matches the authenticated profile.
func requestProfileID(ctx *gin.Context, bodyProfileID string) (uuid.UUID, bool) {
	authed := ctx.GetString("profile_id")
	profileId, err := uuid.Parse(authed)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"detail": "not signed in"})
		return uuid.Nil, false
	}
	if bodyProfileID != "" && bodyProfileID != authed {
		ctx.JSON(http.StatusForbidden, gin.H{"detail": "profile_id does not match the signed-in user"})
		return uuid.Nil, false
	}
	return profileId, true
}
