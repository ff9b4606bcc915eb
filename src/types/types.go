package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type AccountType string

const (
	ACCOUNT_PLAYER AccountType = "Player"
	ACCOUNT_SHIRT  AccountType = "Shirt"
)

type ClaimStatus string

const (
	CLAIM_PENDING ClaimStatus = "pending"
	CLAIM_CLAIMED ClaimStatus = "claimed"
)

type NotificationChannel string

const (
	CHANNEL_SMS   NotificationChannel = "sms"
	CHANNEL_EMAIL NotificationChannel = "email"
)

type NotificationStatus string

const (
	NOTIFICATION_PENDING NotificationStatus = "pending"
	NOTIFICATION_SENDING NotificationStatus = "sending"
	NOTIFICATION_SENT    NotificationStatus = "sent"
	NOTIFICATION_FAILED  NotificationStatus = "failed"
)

type RegistrationTeam struct {
	TeamName             string  `json:"team_name" validate:"required,max=255"`
	TotalPayment         float64 `json:"total_payment" validate:"required"`
	AdditionalShirtCount *int    `json:"additional_shirt_count" validate:"required,min=0"`
	Country              string  `json:"country,omitempty" validate:"omitempty,max=255"`
	Region               string  `json:"region" validate:"required"`
	Province             string  `json:"province,omitempty"`
	City                 string  `json:"city" validate:"required"`
	Barangay             string  `json:"barangay,omitempty"`
	PostalCode           string  `json:"postal_code,omitempty" validate:"omitempty,max=16"`
}

type RegistrationDetail struct {
	FullName     string      `json:"fullName" validate:"required,max=255"`
	Email        string      `json:"email" validate:"required,email,max=255"`
	MobileNumber string      `json:"mobileNumber" validate:"required,max=20,mobile"`
	AccountType  AccountType `json:"accountType" validate:"required,account_type"`
}

type RegistrationRequestBody struct {
	Team    RegistrationTeam     `json:"team"`
	Details []RegistrationDetail `json:"details"`
}

type VerifyPaymentQuery struct {
	TeamID uint `form:"team_id"`
}

type SuccessPageQuery struct {
	SessionID string `form:"id"`
}

type ClaimRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type NotificationsQuery struct {
	TeamID uint `form:"team_id" binding:"required"`
}

// ValidationErrors maps a request field path (e.g. "details.2.email") to the
// messages reported for it.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(v[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
