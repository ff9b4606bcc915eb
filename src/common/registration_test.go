package common

import (
	"cinco/src/config"
	"cinco/src/lib"
	"cinco/src/models"
	"cinco/src/types"
	"cinco/src/utils"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func (s *WorkflowSuite) TestSubmitNewRegistration() {
	body := registrationBody("alpha")
	res, err := SubmitRegistration(context.Background(), body)

	s.Require().NoError(err)
	s.False(res.Resubmission)
	s.Equal("cs_1", res.SessionID)
	s.Equal("https://checkout.test/cs_1", res.CheckoutURL)
	s.EqualValues(1, s.countRows(&models.Team{}))
	s.EqualValues(5, s.countRows(&models.Member{}))

	team := s.team(res.TeamID)
	s.Equal(types.TRANSACTION_PENDING_PAYMENT, team.TransactionStatus)
	s.Require().NotNil(team.CheckoutSessionID)
	s.Equal("cs_1", *team.CheckoutSessionID)
	s.Equal("Philippines", team.Country)

	input := s.Gateway.created[0]
	s.Equal(int64(1250000), input.AmountMinor)
	s.Equal("Team alpha", input.BillingName)
	s.Equal("alpha.0@example.com", input.BillingEmail)
	s.Contains(input.SuccessURL, "/payment/verify?team_id=")

	var members []models.Member
	s.Require().NoError(s.DB.Order("id asc").Find(&members).Error)
	for i, m := range members {
		s.Equal(uint(i+1), m.QRSequence)
		plain := utils.FormatCode(config.QRCodePrefix(), uint(i+1))
		s.Equal(plain+".png", m.QRCodeImg)
		s.NotEqual(plain, m.QRCodeName)
		s.Equal(types.CLAIM_PENDING, m.Status)
		_, err := os.Stat(filepath.Join(s.QRDir, m.QRCodeImg))
		s.NoError(err)
	}
}

func (s *WorkflowSuite) TestSequenceContinuesAcrossRegistrations() {
	_, err := SubmitRegistration(context.Background(), registrationBody("first"))
	s.Require().NoError(err)
	res, err := SubmitRegistration(context.Background(), registrationBody("second"))
	s.Require().NoError(err)

	var seqs []uint
	s.Require().NoError(s.DB.Model(&models.Member{}).Where("team_id = ?", res.TeamID).Order("qr_sequence asc").Pluck("qr_sequence", &seqs).Error)
	s.Equal([]uint{6, 7, 8, 9, 10}, seqs)
}

func (s *WorkflowSuite) TestSubmitValidationErrors() {
	body := registrationBody("beta")
	body.Team.TeamName = ""
	body.Team.TotalPayment = 1000
	body.Details[1].Email = body.Details[0].Email
	body.Details[2].AccountType = "Coach"
	body.Details = body.Details[:4]

	_, err := SubmitRegistration(context.Background(), body)

	var verrs types.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Contains(verrs, "team.team_name")
	s.Equal([]string{"The total payment must be at least 2500."}, verrs["team.total_payment"])
	s.Equal([]string{"The details must have at least 5 items."}, verrs["details"])
	s.Equal([]string{"The details.1.email field has a duplicate value."}, verrs["details.1.email"])
	s.Contains(verrs, "details.2.accountType")
	s.EqualValues(0, s.countRows(&models.Team{}))
	s.Empty(s.Gateway.created)
}

func (s *WorkflowSuite) TestSubmitRejectsTakenContactsOfPaidTeam() {
	paid := s.payTeam("gamma")

	body := registrationBody("delta")
	body.Details[3].Email = "gamma.0@example.com"
	_, err := SubmitRegistration(context.Background(), body)

	var verrs types.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal([]string{"The email has already been taken."}, verrs["details.3.email"])
	s.EqualValues(1, s.countRows(&models.Team{}))
	s.Equal(types.TRANSACTION_PAID, s.team(paid.TeamID).TransactionStatus)
}

func (s *WorkflowSuite) TestSubmitRejectsTakenTeamName() {
	_, err := SubmitRegistration(context.Background(), registrationBody("epsilon"))
	s.Require().NoError(err)

	body := registrationBody("zeta")
	body.Team.TeamName = "Team epsilon"
	_, err = SubmitRegistration(context.Background(), body)

	var verrs types.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal([]string{"The team name has already been taken."}, verrs["team.team_name"])
}

func (s *WorkflowSuite) TestResubmissionUpdatesExistingTeam() {
	first, err := SubmitRegistration(context.Background(), registrationBody("eta"))
	s.Require().NoError(err)
	s.Gateway.setStatus(first.SessionID, "awaiting_payment_method")
	_, err = VerifyPayment(context.Background(), first.TeamID)
	s.Require().NoError(err)
	s.Equal(types.TRANSACTION_FAILED, s.team(first.TeamID).TransactionStatus)

	body := registrationBody("eta")
	body.Team.TotalPayment = 15000
	body.Team.City = "Makati"
	body.Details[0].FullName = "Someone Else"
	res, err := SubmitRegistration(context.Background(), body)

	s.Require().NoError(err)
	s.True(res.Resubmission)
	s.Equal(first.TeamID, res.TeamID)
	s.Equal("cs_2", res.SessionID)
	s.EqualValues(1, s.countRows(&models.Team{}))
	s.EqualValues(5, s.countRows(&models.Member{}))

	team := s.team(res.TeamID)
	s.Equal(15000.0, team.TotalPayment)
	s.Equal("Makati", team.City)
	s.Equal("cs_2", *team.CheckoutSessionID)
	s.Equal(types.TRANSACTION_PENDING_PAYMENT, team.TransactionStatus)

	var m models.Member
	s.Require().NoError(s.DB.Where("email = ?", "eta.0@example.com").Take(&m).Error)
	s.Equal("Member 0 of eta", m.FullName)
}

func (s *WorkflowSuite) TestResubmissionSkipsMemberValidation() {
	_, err := SubmitRegistration(context.Background(), registrationBody("theta"))
	s.Require().NoError(err)

	body := registrationBody("theta")
	body.Details = body.Details[:1]
	body.Details[0].AccountType = "Coach"
	res, err := SubmitRegistration(context.Background(), body)

	s.Require().NoError(err)
	s.True(res.Resubmission)
}

func (s *WorkflowSuite) TestGatewayFailureRollsBack() {
	s.Gateway.createErr = &lib.GatewayError{Provider: "Fake", StatusCode: 400, Detail: "amount too low"}

	_, err := SubmitRegistration(context.Background(), registrationBody("iota"))

	var gerr *lib.GatewayError
	s.Require().True(errors.As(err, &gerr))
	s.EqualValues(0, s.countRows(&models.Team{}))
	s.EqualValues(0, s.countRows(&models.Member{}))
	entries, _ := os.ReadDir(s.QRDir)
	s.Empty(entries)
	s.Empty(s.Gateway.expired)
}

func (s *WorkflowSuite) TestLocalFailureExpiresSession() {
	blocker := filepath.Join(s.QRDir, "blocked")
	s.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))
	os.Setenv("QR_CODE_DIR", filepath.Join(blocker, "qr"))

	_, err := SubmitRegistration(context.Background(), registrationBody("kappa"))

	s.Error(err)
	s.EqualValues(0, s.countRows(&models.Team{}))
	s.EqualValues(0, s.countRows(&models.Member{}))
	s.Equal([]string{"cs_1"}, s.Gateway.expired)
}

func (s *WorkflowSuite) TestSubmitStoresCanonicalContacts() {
	body := registrationBody("phi")
	body.Details[0].Email = "  PHI.0@Example.COM "
	res, err := SubmitRegistration(context.Background(), body)
	s.Require().NoError(err)

	var members []models.Member
	s.Require().NoError(s.DB.Where("team_id = ?", res.TeamID).Order("id asc").Find(&members).Error)
	s.Equal("phi.0@example.com", members[0].Email)
	for i, m := range members {
		s.Equal("63"+strings.TrimPrefix(body.Details[i].MobileNumber, "0"), m.MobileNumber)
	}
}

func (s *WorkflowSuite) TestSubmitRejectsEmailCaseVariantOfPaidMember() {
	s.payTeam("rho")

	body := registrationBody("sigma")
	body.Details[2].Email = "RHO.0@EXAMPLE.COM"
	_, err := SubmitRegistration(context.Background(), body)

	var verrs types.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal([]string{"The email has already been taken."}, verrs["details.2.email"])
	s.EqualValues(1, s.countRows(&models.Team{}))
	s.EqualValues(5, s.countRows(&models.Member{}))
}

func (s *WorkflowSuite) TestSubmitRejectsMobileVariantOfPaidMember() {
	s.payTeam("chi")
	paidMobile := registrationBody("chi").Details[1].MobileNumber

	body := registrationBody("psi")
	body.Details[4].MobileNumber = strings.TrimPrefix(paidMobile, "0")
	_, err := SubmitRegistration(context.Background(), body)

	var verrs types.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal([]string{"The mobile number has already been taken."}, verrs["details.4.mobileNumber"])
	s.EqualValues(1, s.countRows(&models.Team{}))
}

func (s *WorkflowSuite) TestResubmissionMatchesContactVariants() {
	first, err := SubmitRegistration(context.Background(), registrationBody("tau"))
	s.Require().NoError(err)
	tau := registrationBody("tau")

	cases := map[string]func(body *types.RegistrationRequestBody){
		"email in upper case": func(body *types.RegistrationRequestBody) {
			body.Details[0].Email = strings.ToUpper(tau.Details[0].Email)
		},
		"mobile without leading zero": func(body *types.RegistrationRequestBody) {
			body.Details[0].MobileNumber = strings.TrimPrefix(tau.Details[0].MobileNumber, "0")
		},
	}
	for name, change := range cases {
		s.Run(name, func() {
			body := registrationBody("upsilon")
			change(body)
			res, err := SubmitRegistration(context.Background(), body)

			s.Require().NoError(err)
			s.True(res.Resubmission)
			s.Equal(first.TeamID, res.TeamID)
			s.EqualValues(1, s.countRows(&models.Team{}))
			s.EqualValues(5, s.countRows(&models.Member{}))
		})
	}
}
