package common

import (
	"cinco/src/config"
	"cinco/src/db"
	"cinco/src/lib"
	"cinco/src/lib/mailer"
	"cinco/src/models"
	"cinco/src/types"
	"cinco/src/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DISPATCH_BATCH_SIZE  = 100
	// Rows left in sending this long lost their dispatcher mid-delivery.
	STALE_SENDING_AFTER  = 15 * time.Minute
	INTERRUPTED_DELIVERY = "delivery interrupted before its outcome was recorded"
)

// dispatchAfterCommit runs once a verification transaction that enqueued
// notifications has committed.
var dispatchAfterCommit = func(teamID uint) {
	go DispatchPending(context.Background(), teamID)
}

func smsMessage(member *models.Member, teamName string) string {
	if member.AccountType == types.ACCOUNT_SHIRT {
		return fmt.Sprintf(
			"Hi %s! Payment for team %s is confirmed and your shirt is reserved. Show your QR code at the booth to claim it. - Cinco",
			member.FullName, teamName,
		)
	}
	return fmt.Sprintf(
		"Hi %s! Payment for team %s is confirmed. You are officially registered as a player. Show your QR code at the booth to claim your kit. - Cinco",
		member.FullName, teamName,
	)
}

// EnqueuePaidNotifications writes one SMS intent per distinct normalized
// mobile number and one e-mail intent per distinct address. Members are
// expected in registration order; the first member wins a shared contact.
func EnqueuePaidNotifications(tx *gorm.DB, team *models.Team, members []models.Member) ([]models.Notification, error) {
	if len(members) == 0 {
		return nil, nil
	}
	subject, html, err := mailer.RenderConfirmationEmail(team.TeamName, time.Now())
	if err != nil {
		return nil, fmt.Errorf("could not render confirmation email: %w", err)
	}
	countryCode := config.SMSCountryCode()
	seenMobiles := map[string]bool{}
	seenEmails := map[string]bool{}
	var rows []models.Notification
	for i := range members {
		m := &members[i]
		mobile := utils.NormalizePhone(m.MobileNumber, countryCode)
		if mobile != "" && !seenMobiles[mobile] {
			seenMobiles[mobile] = true
			rows = append(rows, models.Notification{
				TeamID:    team.ID,
				MemberID:  m.ID,
				Channel:   types.CHANNEL_SMS,
				Recipient: mobile,
				Body:      smsMessage(m, team.TeamName),
				Status:    types.NOTIFICATION_PENDING,
				Metadata:  types.JSONB{"account_type": string(m.AccountType)},
			})
		}
		email := strings.ToLower(strings.TrimSpace(m.Email))
		if email != "" && !seenEmails[email] {
			seenEmails[email] = true
			rows = append(rows, models.Notification{
				TeamID:    team.ID,
				MemberID:  m.ID,
				Channel:   types.CHANNEL_EMAIL,
				Recipient: email,
				Subject:   subject,
				Body:      html,
				Status:    types.NOTIFICATION_PENDING,
			})
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type DispatchReport struct {
	Sent   int
	Failed int
}

// DispatchPending delivers pending notifications, for one team or for every
// team when teamID is 0. Each row is claimed before sending so it is delivered
// at most once even with concurrent dispatchers. Delivery errors are recorded
// on the row and never returned.
func DispatchPending(ctx context.Context, teamID uint) (*DispatchReport, error) {
	dbc := db.GetDb()
	q := dbc.
		Where("status = ?", types.NOTIFICATION_PENDING).
		Order("created_at asc").
		Limit(DISPATCH_BATCH_SIZE)
	if teamID != 0 {
		q = q.Where("team_id = ?", teamID)
	}
	var pending []models.Notification
	if err := q.Find(&pending).Error; err != nil {
		log.Printf("[Outbox] Error retrieving pending notifications: %s\n", err.Error())
		return nil, err
	}
	report := &DispatchReport{}
	for i := range pending {
		n := &pending[i]
		claimed, err := claimNotification(dbc, n)
		if err != nil {
			log.Printf("[Outbox] Could not claim notification %s: %s\n", n.ID, err.Error())
			continue
		}
		if !claimed {
			continue
		}
		sendErr := deliver(ctx, n)
		if err := recordOutcome(dbc, n, sendErr); err != nil {
			log.Printf("[Outbox] Could not record outcome of %s: %s\n", n.ID, err.Error())
		}
		if sendErr != nil {
			log.Printf("[Outbox] %s to %s failed: %s\n", n.Channel, n.Recipient, sendErr.Error())
			report.Failed++
			continue
		}
		report.Sent++
	}
	if len(pending) > 0 {
		log.Printf("[Outbox] Dispatched %d notifications: sent=%d failed=%d\n", len(pending), report.Sent, report.Failed)
	}
	return report, nil
}

func claimNotification(dbc *gorm.DB, n *models.Notification) (bool, error) {
	res := dbc.
		Model(&models.Notification{}).
		Where("id = ? AND status = ?", n.ID, types.NOTIFICATION_PENDING).
		Updates(map[string]any{
			"status":   types.NOTIFICATION_SENDING,
			"attempts": gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	n.Status = types.NOTIFICATION_SENDING
	n.Attempts++
	return true, nil
}

func deliver(ctx context.Context, n *models.Notification) error {
	switch n.Channel {
	case types.CHANNEL_SMS:
		sender := lib.GetSMSSender()
		if sender == nil {
			return errors.New("no sms sender configured")
		}
		return sender.SendSMS(ctx, n.Recipient, n.Body)
	case types.CHANNEL_EMAIL:
		sender := lib.GetEmailSender()
		if sender == nil {
			return errors.New("no email sender configured")
		}
		return sender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	}
	return fmt.Errorf("unknown notification channel: %s", n.Channel)
}

func recordOutcome(dbc *gorm.DB, n *models.Notification, sendErr error) error {
	updates := map[string]any{}
	if sendErr != nil {
		msg := sendErr.Error()
		n.Status = types.NOTIFICATION_FAILED
		n.LastError = &msg
		updates["status"] = n.Status
		updates["last_error"] = msg
	} else {
		now := time.Now()
		n.Status = types.NOTIFICATION_SENT
		n.SentAt = &now
		updates["status"] = n.Status
		updates["sent_at"] = now
	}
	return dbc.
		Model(&models.Notification{}).
		Where("id = ?", n.ID).
		Updates(updates).
		Error
}

// FailStaleSending marks rows claimed before cutoff and never resolved as
// failed. Whether such a message went out is unknown, so it is not resent.
func FailStaleSending(cutoff time.Time) (int64, error) {
	res := db.GetDb().
		Model(&models.Notification{}).
		Where("status = ? AND updated_at < ?", types.NOTIFICATION_SENDING, cutoff).
		Updates(map[string]any{
			"status":     types.NOTIFICATION_FAILED,
			"last_error": INTERRUPTED_DELIVERY,
		})
	return res.RowsAffected, res.Error
}

// SweepPending picks up notifications left pending, e.g. by a restart between
// commit and dispatch, and closes out deliveries that were interrupted.
func SweepPending() {
	stale, err := FailStaleSending(time.Now().Add(-STALE_SENDING_AFTER))
	if err != nil {
		log.Printf("[Outbox] Could not close stale deliveries: %s\n", err.Error())
	} else if stale > 0 {
		log.Printf("[Outbox] Marked %d interrupted deliveries as failed\n", stale)
	}
	if _, err := DispatchPending(context.Background(), 0); err != nil {
		log.Printf("[Outbox] Sweep failed: %s\n", err.Error())
	}
}

func ListNotifications(teamID uint) ([]models.Notification, error) {
	var rows []models.Notification
	err := db.GetDb().
		Where("team_id = ?", teamID).
		Order("created_at asc").
		Find(&rows).
		Error
	return rows, err
}
