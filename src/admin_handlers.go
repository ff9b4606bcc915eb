package main

import (
	"cinco/src/common"
	"cinco/src/middlewares"
	"cinco/src/types"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/admin")
	admin.Use(middlewares.AdminSecret)
	admin.
		GET("/dashboard", func(ctx *gin.Context) {
			stats, err := common.GetDashboardStats(ctx.Request.Context())
			if err != nil {
				log.Printf("Error loading dashboard: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, stats)
		}).
		GET("/members", func(ctx *gin.Context) {
			members, err := common.ListMembers()
			if err != nil {
				log.Printf("Error listing members: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"members": members})
		}).
		POST("/claims", func(ctx *gin.Context) {
			var body types.ClaimRequestBody
			err := ctx.ShouldBindJSON(&body)
			if err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			member, err := common.ClaimMember(body.Code)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrMemberNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrAlreadyClaimed):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrTeamNotPaid):
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				default:
					log.Printf("Error claiming member: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"member": member})
		}).
		GET("/notifications", func(ctx *gin.Context) {
			var query types.NotificationsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rows, err := common.ListNotifications(query.TeamID)
			if err != nil {
				log.Printf("Error listing notifications: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"notifications": rows})
		})
	return admin
}
