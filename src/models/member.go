package models

import "cinco/src/types"

type Member struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	TeamID       uint              `gorm:"index;not null" json:"team_id"`
	FullName     string            `gorm:"size:255" json:"full_name"`
	Email        string            `gorm:"size:255;uniqueIndex" json:"email"`
	MobileNumber string            `gorm:"size:20;uniqueIndex" json:"mobile_number"`
	AccountType  types.AccountType `gorm:"size:16" json:"account_type"`
	QRSequence   uint              `gorm:"column:qr_sequence;uniqueIndex" json:"-"`
	QRCodeName   string            `gorm:"column:qrcode_name;index" json:"qrcode_name,omitempty"`
	QRCodeImg    string            `gorm:"column:qrcode_img" json:"qrcode_img,omitempty"`
	Status       types.ClaimStatus `gorm:"size:16;default:'pending'" json:"status"`

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	types.Timestamps
}
