package common

import (
	"cinco/src/config"
	"cinco/src/db"
	"cinco/src/lib"
	"cinco/src/models"
	"cinco/src/types"
	"cinco/src/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTeamAlreadyPaid = errors.New("team has already been paid")

type RegistrationResult struct {
	TeamID       uint
	SessionID    string
	CheckoutURL  string
	Resubmission bool
}

// SubmitRegistration registers a team and opens a checkout session for it.
//
// A submission sharing an email or mobile number with a member of an unpaid
// team updates that team instead of creating a new one; its members and QR
// codes are left as they are.
func SubmitRegistration(ctx context.Context, body *types.RegistrationRequestBody) (*RegistrationResult, error) {
	dbc := db.GetDb()
	existing, err := findResubmissionTeam(dbc, body.Details)
	if err != nil {
		return nil, err
	}
	verrs := types.ValidationErrors{}
	if existing != nil {
		validateTeamFields(dbc, verrs, &body.Team, existing.ID)
	} else {
		validateTeamFields(dbc, verrs, &body.Team, 0)
		validateDetails(dbc, verrs, body.Details)
	}
	if len(verrs) > 0 {
		return nil, verrs
	}
	gateway := lib.GetPaymentGateway()
	if gateway == nil {
		return nil, ErrGatewayUnavailable
	}

	result := &RegistrationResult{Resubmission: existing != nil}
	var issued []IssuedCode
	err = dbc.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if existing != nil {
			err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", existing.ID).
				Take(&team).
				Error
			if err != nil {
				return err
			}
			if team.TransactionStatus == types.TRANSACTION_PAID {
				return ErrTeamAlreadyPaid
			}
			team.ApplyRegistration(&body.Team)
			if err := tx.
				Model(&team).
				Select("team_name", "total_payment", "additional_shirt_count", "country", "region", "province", "city", "barangay", "postal_code").
				Updates(&team).
				Error; err != nil {
				return err
			}
		} else {
			team.ApplyRegistration(&body.Team)
			team.TransactionStatus = types.TRANSACTION_PENDING_REGISTRATION
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
		}
		result.TeamID = team.ID

		session, err := gateway.CreateCheckoutSession(ctx, checkoutInput(&team, body.Details))
		if err != nil {
			return err
		}
		result.SessionID = session.ID
		result.CheckoutURL = session.CheckoutURL

		if err := tx.
			Model(&models.Team{}).
			Where("id = ?", team.ID).
			Update("checkout_session_id", session.ID).
			Error; err != nil {
			return err
		}
		if err := team.Transition(tx, types.TRANSACTION_PENDING_PAYMENT); err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		issued, err = IssueMemberCodes(ctx, tx, len(body.Details))
		if err != nil {
			return err
		}
		members := make([]models.Member, len(body.Details))
		for i, d := range body.Details {
			members[i] = models.Member{
				TeamID:       team.ID,
				FullName:     strings.TrimSpace(d.FullName),
				Email:        canonicalEmail(d.Email),
				MobileNumber: canonicalMobile(d.MobileNumber),
				AccountType:  d.AccountType,
				QRSequence:   issued[i].Sequence,
				QRCodeName:   issued[i].Hashed,
				QRCodeImg:    issued[i].Image,
				Status:       types.CLAIM_PENDING,
			}
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		log.Printf("Registration Failed: %s\n", err.Error())
		RemoveIssuedCodes(issued)
		if result.SessionID != "" {
			expireOrphanedSession(gateway, result.SessionID)
		}
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			verrs.Add("registration", "The team or one of its members has already been registered.")
			return nil, verrs
		case errors.Is(err, ErrTeamAlreadyPaid):
			verrs.Add("registration", "This team has already completed its payment.")
			return nil, verrs
		}
		return nil, err
	}
	log.Printf("[Registration] Team %d registered with session %s (resubmission=%t)\n", result.TeamID, result.SessionID, result.Resubmission)
	return result, nil
}

// expireOrphanedSession closes a checkout session whose registration was
// rolled back. One attempt only; a failure is left for manual follow-up.
func expireOrphanedSession(gateway lib.PaymentGateway, sessionID string) {
	if err := gateway.ExpireCheckoutSession(context.Background(), sessionID); err != nil {
		log.Printf("[Registration] Could not expire orphaned checkout session %s: %s\n", sessionID, err.Error())
		return
	}
	log.Printf("[Registration] Expired orphaned checkout session %s\n", sessionID)
}

func checkoutInput(team *models.Team, details []types.RegistrationDetail) *lib.CheckoutSessionInput {
	verifyURL := fmt.Sprintf("%s/payment/verify?team_id=%d", strings.TrimRight(config.AppHost(), "/"), team.ID)
	var email string
	if len(details) > 0 {
		email = canonicalEmail(details[0].Email)
	}
	return &lib.CheckoutSessionInput{
		AmountMinor:  utils.ToMinorUnits(team.TotalPayment),
		Currency:     config.PaymentCurrency(),
		LineItemName: "Team Registration - " + team.TeamName,
		Description:  "Team Registration Payment for " + team.TeamName,
		BillingName:  team.TeamName,
		BillingEmail: email,
		SuccessURL:   verifyURL,
		CancelURL:    verifyURL,
		Metadata:     map[string]string{"team_id": strconv.FormatUint(uint64(team.ID), 10)},
	}
}

// findResubmissionTeam returns the lowest-id unpaid team that already has a
// member with one of the submitted emails or mobile numbers.
func findResubmissionTeam(dbc *gorm.DB, details []types.RegistrationDetail) (*models.Team, error) {
	emails, mobiles := contactsOf(details)
	if len(emails) == 0 && len(mobiles) == 0 {
		return nil, nil
	}
	q := dbc.
		Model(&models.Member{}).
		Joins("JOIN teams ON teams.id = members.team_id AND teams.deleted_at IS NULL").
		Where("teams.transaction_status <> ?", types.TRANSACTION_PAID)
	switch {
	case len(emails) > 0 && len(mobiles) > 0:
		q = q.Where("members.email IN ? OR members.mobile_number IN ?", emails, mobiles)
	case len(emails) > 0:
		q = q.Where("members.email IN ?", emails)
	default:
		q = q.Where("members.mobile_number IN ?", mobiles)
	}
	var teamIDs []uint
	if err := q.
		Order("members.team_id asc").
		Limit(1).
		Pluck("members.team_id", &teamIDs).
		Error; err != nil {
		return nil, err
	}
	if len(teamIDs) == 0 {
		return nil, nil
	}
	var team models.Team
	if err := dbc.Where("id = ?", teamIDs[0]).Take(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// canonicalEmail and canonicalMobile give the stored form of member contacts.
// Uniqueness is checked and enforced on these forms only.
func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func canonicalMobile(mobile string) string {
	return utils.NormalizePhone(mobile, config.SMSCountryCode())
}

func contactsOf(details []types.RegistrationDetail) ([]string, []string) {
	var emails, mobiles []string
	for _, d := range details {
		if e := canonicalEmail(d.Email); e != "" {
			emails = append(emails, e)
		}
		if m := canonicalMobile(d.MobileNumber); m != "" {
			mobiles = append(mobiles, m)
		}
	}
	return emails, mobiles
}

// validateTeamFields checks team-level fields. The name must not belong to
// any team other than excludeID.
func validateTeamFields(dbc *gorm.DB, verrs types.ValidationErrors, team *types.RegistrationTeam, excludeID uint) {
	utils.ValidateInto(verrs, "team.", team)
	if _, ok := verrs["team.total_payment"]; !ok {
		minimum := config.MinimumPayment()
		if team.TotalPayment < minimum {
			verrs.Add("team.total_payment", fmt.Sprintf("The total payment must be at least %s.", strconv.FormatFloat(minimum, 'f', -1, 64)))
		}
	}
	name := strings.TrimSpace(team.TeamName)
	if name == "" {
		return
	}
	var count int64
	q := dbc.Model(&models.Team{}).Where("team_name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		log.Printf("Could not check team name: %s\n", err.Error())
		return
	}
	if count > 0 {
		verrs.Add("team.team_name", "The team name has already been taken.")
	}
}

// validateDetails checks member records of a brand-new registration,
// including uniqueness against every existing member.
func validateDetails(dbc *gorm.DB, verrs types.ValidationErrors, details []types.RegistrationDetail) {
	if len(details) < config.MIN_TEAM_MEMBERS {
		verrs.Add("details", fmt.Sprintf("The details must have at least %d items.", config.MIN_TEAM_MEMBERS))
	}
	seenEmails := map[string]bool{}
	seenMobiles := map[string]bool{}
	for i := range details {
		prefix := fmt.Sprintf("details.%d.", i)
		utils.ValidateInto(verrs, prefix, &details[i])
		email := canonicalEmail(details[i].Email)
		if email != "" {
			if seenEmails[email] {
				verrs.Add(prefix+"email", fmt.Sprintf("The %semail field has a duplicate value.", prefix))
			}
			seenEmails[email] = true
		}
		mobile := canonicalMobile(details[i].MobileNumber)
		if mobile != "" {
			if seenMobiles[mobile] {
				verrs.Add(prefix+"mobileNumber", fmt.Sprintf("The %smobileNumber field has a duplicate value.", prefix))
			}
			seenMobiles[mobile] = true
		}
	}

	emails, mobiles := contactsOf(details)
	var taken []models.Member
	if len(emails) > 0 || len(mobiles) > 0 {
		if err := dbc.
			Select("email", "mobile_number").
			Where("email IN ? OR mobile_number IN ?", emails, mobiles).
			Find(&taken).
			Error; err != nil {
			log.Printf("Could not check member uniqueness: %s\n", err.Error())
			return
		}
	}
	takenEmails := map[string]bool{}
	takenMobiles := map[string]bool{}
	for _, m := range taken {
		takenEmails[m.Email] = true
		takenMobiles[m.MobileNumber] = true
	}
	for i, d := range details {
		prefix := fmt.Sprintf("details.%d.", i)
		if takenEmails[canonicalEmail(d.Email)] {
			verrs.Add(prefix+"email", "The email has already been taken.")
		}
		if takenMobiles[canonicalMobile(d.MobileNumber)] {
			verrs.Add(prefix+"mobileNumber", "The mobile number has already been taken.")
		}
	}
}
