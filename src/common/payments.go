package common

import (
	"cinco/src/db"
	"cinco/src/lib"
	"cinco/src/models"
	"cinco/src/types"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrSessionMissing     = errors.New("payment session not recorded")
	ErrGatewayUnavailable = errors.New("payment gateway is not configured")
)

const paidTeamCacheTTL = 10 * time.Minute

type VerificationResult struct {
	TeamID        uint
	TeamName      string
	SessionID     string
	Status        types.TransactionStatus
	AlreadyPaid   bool
	Notifications int
}

// MapPaymentStatus converts a gateway payment status into a team status.
func MapPaymentStatus(status string) types.TransactionStatus {
	switch strings.ToLower(status) {
	case "succeeded", "paid":
		return types.TRANSACTION_PAID
	case "pending":
		return types.TRANSACTION_PENDING
	}
	return types.TRANSACTION_FAILED
}

// StatusMessage is the text shown to the registrant after verification.
func StatusMessage(status types.TransactionStatus) string {
	switch status {
	case types.TRANSACTION_PAID:
		return "Payment successful! Your team is officially registered."
	case types.TRANSACTION_PENDING:
		return "Payment status is still pending. We will notify you when it is confirmed."
	}
	return "Payment failed or was cancelled. Please try registering again."
}

// VerifyPayment reconciles a team with its checkout session. The team row is
// locked for the whole check so concurrent callbacks are serialized, and a
// team that is already paid is returned untouched.
func VerifyPayment(ctx context.Context, teamID uint) (*VerificationResult, error) {
	gateway := lib.GetPaymentGateway()
	result := &VerificationResult{TeamID: teamID}
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var team models.Team
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", teamID).
			Take(&team).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		} else if err != nil {
			return err
		}
		result.TeamName = team.TeamName
		result.Status = team.TransactionStatus
		if team.CheckoutSessionID != nil {
			result.SessionID = *team.CheckoutSessionID
		}
		if team.TransactionStatus == types.TRANSACTION_PAID {
			result.AlreadyPaid = true
			return nil
		}
		if result.SessionID == "" {
			return ErrSessionMissing
		}
		if gateway == nil {
			return ErrGatewayUnavailable
		}
		session, err := gateway.GetCheckoutSession(ctx, result.SessionID)
		if err != nil {
			return err
		}
		status := MapPaymentStatus(session.PaymentStatus)
		if err := team.Transition(tx, status); err != nil {
			return err
		}
		result.Status = status
		if status != types.TRANSACTION_PAID {
			return nil
		}
		var members []models.Member
		if err := tx.
			Where("team_id = ?", team.ID).
			Order("id asc").
			Find(&members).
			Error; err != nil {
			return err
		}
		rows, err := EnqueuePaidNotifications(tx, &team, members)
		if err != nil {
			return err
		}
		result.Notifications = len(rows)
		return nil
	})
	if err != nil {
		log.Printf("[Verify] Payment verification for team %d failed: %s\n", teamID, err.Error())
		return nil, err
	}
	if result.Status == types.TRANSACTION_PAID && !result.AlreadyPaid {
		log.Printf("[Verify] Team %d is paid\n", teamID)
		if err := lib.CacheDelete(ctx, DASHBOARD_CACHE_KEY); err != nil {
			log.Printf("[Verify] Could not clear dashboard cache: %s\n", err.Error())
		}
		if result.Notifications > 0 {
			dispatchAfterCommit(teamID)
		}
	}
	return result, nil
}

func paidTeamCacheKey(sessionID string) string {
	return fmt.Sprintf("paid_team:%s", sessionID)
}

// FindPaidTeamBySession looks up the paid team owning a checkout session.
// Paid is terminal, so hits are cached.
func FindPaidTeamBySession(ctx context.Context, sessionID string) (*models.Team, error) {
	if sessionID == "" {
		return nil, ErrTeamNotFound
	}
	var team models.Team
	hit, err := lib.CacheGetJSON(ctx, paidTeamCacheKey(sessionID), &team)
	if err != nil {
		log.Printf("[redis] Error reading paid team: %s\n", err.Error())
	}
	if hit {
		return &team, nil
	}
	err = db.GetDb().
		Select("id", "team_name", "checkout_session_id", "transaction_status").
		Where("checkout_session_id = ? AND transaction_status = ?", sessionID, types.TRANSACTION_PAID).
		Take(&team).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	} else if err != nil {
		return nil, err
	}
	if err := lib.CacheSetJSON(ctx, paidTeamCacheKey(sessionID), &team, paidTeamCacheTTL); err != nil {
		log.Printf("[redis] Error caching paid team: %s\n", err.Error())
	}
	return &team, nil
}
