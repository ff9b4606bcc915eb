package common

import (
	"cinco/src/lib"
	"cinco/src/models"
	"cinco/src/types"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

func (s *WorkflowSuite) seedPaidTeam(members []models.Member) models.Team {
	session := "cs_seeded"
	team := models.Team{TeamName: "Seeded", TotalPayment: 2500, CheckoutSessionID: &session, TransactionStatus: types.TRANSACTION_PAID}
	s.Require().NoError(s.DB.Create(&team).Error)
	for i := range members {
		members[i].TeamID = team.ID
		members[i].QRSequence = uint(100 + i)
	}
	s.Require().NoError(s.DB.Create(&members).Error)
	return team
}

func (s *WorkflowSuite) TestEnqueueDedupesContacts() {
	members := []models.Member{
		{FullName: "Ana", Email: "ana@example.com", MobileNumber: "09171234567", AccountType: types.ACCOUNT_PLAYER},
		{FullName: "Ben", Email: "ANA@example.com", MobileNumber: "9171234567", AccountType: types.ACCOUNT_SHIRT},
		{FullName: "Cy", Email: "cy@example.com", MobileNumber: "+639171234567", AccountType: types.ACCOUNT_PLAYER},
		{FullName: "Dee", Email: "dee@example.com", MobileNumber: "09181112222", AccountType: types.ACCOUNT_SHIRT},
	}
	team := s.seedPaidTeam(members)

	var rows []models.Notification
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		rows, err = EnqueuePaidNotifications(tx, &team, members)
		return err
	})
	s.Require().NoError(err)

	var sms, email []string
	for _, r := range rows {
		s.Equal(types.NOTIFICATION_PENDING, r.Status)
		switch r.Channel {
		case types.CHANNEL_SMS:
			sms = append(sms, r.Recipient)
		case types.CHANNEL_EMAIL:
			email = append(email, r.Recipient)
		}
	}
	s.Equal([]string{"639171234567", "639181112222"}, sms)
	s.Equal([]string{"ana@example.com", "cy@example.com", "dee@example.com"}, email)
	s.Contains(rows[0].Body, "player")
	s.Contains(rows[len(rows)-2].Body, "shirt")
}

func (s *WorkflowSuite) TestDispatchRecordsPerRecipientOutcome() {
	members := []models.Member{
		{FullName: "Eve", Email: "eve@example.com", MobileNumber: "09170000001", AccountType: types.ACCOUNT_PLAYER},
		{FullName: "Fay", Email: "fay@example.com", MobileNumber: "09170000002", AccountType: types.ACCOUNT_PLAYER},
		{FullName: "Gus", Email: "gus@example.com", MobileNumber: "09170000003", AccountType: types.ACCOUNT_SHIRT},
	}
	team := s.seedPaidTeam(members)
	s.Require().NoError(s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := EnqueuePaidNotifications(tx, &team, members)
		return err
	}))
	s.SMS.failOn["639170000002"] = true

	report, err := DispatchPending(context.Background(), team.ID)

	s.Require().NoError(err)
	s.Equal(5, report.Sent)
	s.Equal(1, report.Failed)
	s.Len(s.SMS.sent, 2)
	s.Len(s.Email.sent, 3)

	var failed models.Notification
	s.Require().NoError(s.DB.Where("status = ?", types.NOTIFICATION_FAILED).Take(&failed).Error)
	s.Equal("639170000002", failed.Recipient)
	s.Equal(1, failed.Attempts)
	s.Require().NotNil(failed.LastError)
	s.Equal("carrier rejected", *failed.LastError)

	var sent int64
	s.DB.Model(&models.Notification{}).Where("status = ? AND sent_at IS NOT NULL", types.NOTIFICATION_SENT).Count(&sent)
	s.EqualValues(5, sent)

	again, err := DispatchPending(context.Background(), team.ID)
	s.Require().NoError(err)
	s.Equal(0, again.Sent+again.Failed)
	s.Len(s.SMS.sent, 2)
}

func (s *WorkflowSuite) TestDispatchSkipsClaimedRows() {
	members := []models.Member{
		{FullName: "Hal", Email: "hal@example.com", MobileNumber: "09170000011", AccountType: types.ACCOUNT_PLAYER},
	}
	team := s.seedPaidTeam(members)
	s.Require().NoError(s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := EnqueuePaidNotifications(tx, &team, members)
		return err
	}))
	s.Require().NoError(s.DB.Model(&models.Notification{}).Where("channel = ?", types.CHANNEL_SMS).Update("status", types.NOTIFICATION_SENDING).Error)

	report, err := DispatchPending(context.Background(), 0)

	s.Require().NoError(err)
	s.Equal(1, report.Sent)
	s.Empty(s.SMS.sent)
	s.Equal([]string{"hal@example.com"}, s.Email.sent)
}

func (s *WorkflowSuite) TestDispatchWithoutSender() {
	lib.NewSMSSender(nil)
	s.T().Setenv("SMS_PROVIDER", "sns")
	members := []models.Member{
		{FullName: "Ivy", Email: "ivy@example.com", MobileNumber: "09170000021", AccountType: types.ACCOUNT_PLAYER},
	}
	team := s.seedPaidTeam(members)
	s.Require().NoError(s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := EnqueuePaidNotifications(tx, &team, members)
		return err
	}))

	SweepPending()

	rows, err := ListNotifications(team.ID)
	s.Require().NoError(err)
	s.Len(rows, 2)
	for _, r := range rows {
		if r.Channel == types.CHANNEL_SMS {
			s.Equal(types.NOTIFICATION_FAILED, r.Status)
			s.True(strings.Contains(*r.LastError, "no sms sender"))
		} else {
			s.Equal(types.NOTIFICATION_SENT, r.Status)
		}
	}
}

func (s *WorkflowSuite) TestSweepFailsInterruptedDeliveries() {
	members := []models.Member{
		{FullName: "Jo", Email: "jo@example.com", MobileNumber: "09170000031", AccountType: types.ACCOUNT_PLAYER},
		{FullName: "Kai", Email: "kai@example.com", MobileNumber: "09170000032", AccountType: types.ACCOUNT_SHIRT},
	}
	team := s.seedPaidTeam(members)
	s.Require().NoError(s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := EnqueuePaidNotifications(tx, &team, members)
		return err
	}))
	stale := s.DB.Model(&models.Notification{}).Where("recipient = ?", "639170000031")
	s.Require().NoError(stale.UpdateColumns(map[string]any{
		"status":     types.NOTIFICATION_SENDING,
		"updated_at": time.Now().Add(-time.Hour),
	}).Error)
	s.Require().NoError(s.DB.Model(&models.Notification{}).Where("recipient = ?", "639170000032").Update("status", types.NOTIFICATION_SENDING).Error)

	SweepPending()

	var interrupted, inFlight models.Notification
	s.Require().NoError(s.DB.Where("recipient = ?", "639170000031").Take(&interrupted).Error)
	s.Equal(types.NOTIFICATION_FAILED, interrupted.Status)
	s.Require().NotNil(interrupted.LastError)
	s.Equal(INTERRUPTED_DELIVERY, *interrupted.LastError)
	s.Require().NoError(s.DB.Where("recipient = ?", "639170000032").Take(&inFlight).Error)
	s.Equal(types.NOTIFICATION_SENDING, inFlight.Status)
	s.Empty(s.SMS.sent)
	s.Len(s.Email.sent, 2)
}
