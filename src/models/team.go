package models

import (
	"cinco/src/types"
	"fmt"

	"gorm.io/gorm"
)

type Team struct {
	ID                   uint                    `gorm:"primarykey" json:"id"`
	TeamName             string                  `gorm:"size:255;uniqueIndex" json:"team_name"`
	TotalPayment         float64                 `gorm:"type:decimal(10,2)" json:"total_payment"`
	AdditionalShirtCount int                     `gorm:"default:0" json:"additional_shirt_count"`
	Country              string                  `gorm:"default:'Philippines'" json:"country"`
	Region               string                  `json:"region,omitempty"`
	Province             string                  `json:"province,omitempty"`
	City                 string                  `json:"city,omitempty"`
	Barangay             string                  `json:"barangay,omitempty"`
	PostalCode           string                  `json:"postal_code,omitempty"`
	CheckoutSessionID    *string                 `gorm:"index" json:"checkout_session_id,omitempty"`
	TransactionStatus    types.TransactionStatus `gorm:"size:32;index;default:'pending_registration'" json:"transaction_status"`

	Members []Member `gorm:"foreignKey:TeamID" json:"members,omitempty"`

	types.Timestamps
}

// Transition moves the team to the given status. The write only applies when
// the stored status still matches the in-memory one.
func (t *Team) Transition(tx *gorm.DB, to types.TransactionStatus) error {
	from := t.TransactionStatus
	if !types.CanTransition(from, to) {
		return fmt.Errorf("%w: team %d %s -> %s", types.ErrIllegalTransition, t.ID, from, to)
	}
	res := tx.
		Model(&Team{}).
		Where("id = ? AND transaction_status = ?", t.ID, from).
		Update("transaction_status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: team %d is no longer %s", types.ErrIllegalTransition, t.ID, from)
	}
	t.TransactionStatus = to
	return nil
}

func (t *Team) ApplyRegistration(body *types.RegistrationTeam) {
	t.TeamName = body.TeamName
	t.TotalPayment = body.TotalPayment
	if body.AdditionalShirtCount != nil {
		t.AdditionalShirtCount = *body.AdditionalShirtCount
	}
	t.Country = body.Country
	if t.Country == "" {
		t.Country = "Philippines"
	}
	t.Region = body.Region
	t.Province = body.Province
	t.City = body.City
	t.Barangay = body.Barangay
	t.PostalCode = body.PostalCode
}
