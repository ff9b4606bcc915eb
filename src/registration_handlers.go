package main

import (
	"cinco/src/common"
	"cinco/src/types"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

func registrationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/registrations", func(ctx *gin.Context) {
			var body types.RegistrationRequestBody
			err := ctx.ShouldBindJSON(&body)
			if err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": types.ValidationErrors{"body": {err.Error()}}})
				return
			}

			res, err := common.SubmitRegistration(ctx.Request.Context(), &body)
			if err != nil {
				var verrs types.ValidationErrors
				if errors.As(err, &verrs) {
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
					return
				}
				log.Printf("Team registration failed: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{
					"message": "Team registration failed. The transaction was rolled back.",
					"error":   err.Error(),
				})
				return
			}

			ctx.JSON(http.StatusAccepted, gin.H{
				"message":     "Team registered. Redirecting to payment.",
				"teamId":      res.TeamID,
				"checkoutUrl": res.CheckoutURL,
			})
		})
	return g
}

// paymentPages are the browser-facing redirect targets of the checkout page.
func paymentPages(g *gin.Engine) {
	payment := g.Group("/payment")
	payment.
		GET("/verify", func(ctx *gin.Context) {
			var query types.VerifyPaymentQuery
			if err := ctx.ShouldBindQuery(&query); err != nil || query.TeamID == 0 {
				redirectToRegister(ctx, "error", "Payment verification failed: Missing team ID.")
				return
			}

			res, err := common.VerifyPayment(ctx.Request.Context(), query.TeamID)
			if err != nil {
				log.Printf("Error verifying payment for team %d: %s\n", query.TeamID, err.Error())
				switch {
				case errors.Is(err, common.ErrTeamNotFound):
					redirectToRegister(ctx, "error", "Team not found.")
				case errors.Is(err, common.ErrSessionMissing):
					redirectToRegister(ctx, "error", "Payment session not recorded. Please register again.")
				default:
					redirectToRegister(ctx, "error", "An error occurred during payment verification.")
				}
				return
			}

			if res.Status == types.TRANSACTION_PAID {
				redirectTo(ctx, "/payment/success?id="+url.QueryEscape(res.SessionID))
				return
			}
			redirectToRegister(ctx, "status", common.StatusMessage(res.Status))
		}).
		GET("/success", func(ctx *gin.Context) {
			var query types.SuccessPageQuery
			if err := ctx.ShouldBindQuery(&query); err != nil || query.SessionID == "" {
				redirectToRegister(ctx, "error", "Payment session ID missing.")
				return
			}

			team, err := common.FindPaidTeamBySession(ctx.Request.Context(), query.SessionID)
			if err != nil {
				if !errors.Is(err, common.ErrTeamNotFound) {
					log.Printf("Error loading team for session %s: %s\n", query.SessionID, err.Error())
				}
				redirectToRegister(ctx, "error", "Registration not found for this session ID.")
				return
			}

			ctx.HTML(http.StatusOK, "payment_success.html", gin.H{
				"TeamName":  team.TeamName,
				"SessionID": query.SessionID,
			})
		})
}

// redirectTo answers with a bodyless temporary redirect. gin's Redirect
// writes an HTML link body on GET.
func redirectTo(ctx *gin.Context, location string) {
	ctx.Header("Location", location)
	ctx.Status(http.StatusTemporaryRedirect)
}

func redirectToRegister(ctx *gin.Context, key, message string) {
	q := url.Values{}
	q.Set(key, message)
	redirectTo(ctx, "/register?"+q.Encode())
}
