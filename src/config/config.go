package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=cincodb port=5432 sslmode=disable TimeZone=Asia/Manila"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	DEFAULT_CURRENCY       = "PHP"
	DEFAULT_QR_PREFIX      = "Cinco"
	DEFAULT_QR_DIR         = "public/qr_image"
	DEFAULT_MIN_PAYMENT    = 2500
	DEFAULT_COUNTRY        = "Philippines"
	DEFAULT_COUNTRY_CODE   = "63"
	DEFAULT_PAYMONGO_API   = "https://api.paymongo.com/v1"
	DEFAULT_STATEMENT_DESC = "CINCOREG"
	MIN_TEAM_MEMBERS       = 5
	EMAIL_DATE_FORMAT      = "January 2, 2006"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// AppHost is the public base URL of the registration site; checkout redirects
// and the verify/success pages are built from it.
func AppHost() string {
	return getenv("APP_HOST", "http://localhost:8080")
}

func Port() string {
	return getenv("PORT", "8080")
}

func PaymentProvider() string {
	return getenv("PAYMENT_PROVIDER", "paymongo")
}

func PaymongoSecretKey() string {
	return os.Getenv("PAYMONGO_SECRET_KEY")
}

func PaymongoAPIURL() string {
	return getenv("PAYMONGO_API_URL", DEFAULT_PAYMONGO_API)
}

func StripeSecretKey() string {
	return os.Getenv("STRIPE_SECRET_KEY")
}

func PaymentCurrency() string {
	return getenv("PAYMENT_CURRENCY", DEFAULT_CURRENCY)
}

func StatementDescriptor() string {
	return getenv("PAYMENT_STATEMENT_DESCRIPTOR", DEFAULT_STATEMENT_DESC)
}

// MinimumPayment is the lowest team total accepted on registration.
func MinimumPayment() float64 {
	v, err := strconv.ParseFloat(os.Getenv("REGISTRATION_MIN_PAYMENT"), 64)
	if err != nil || v < 0 {
		return DEFAULT_MIN_PAYMENT
	}
	return v
}

func QRCodePrefix() string {
	return getenv("QR_CODE_PREFIX", DEFAULT_QR_PREFIX)
}

func QRCodeDir() string {
	return getenv("QR_CODE_DIR", DEFAULT_QR_DIR)
}

func QRStorage() string {
	return getenv("QR_STORAGE", "local")
}

func AssetsBucket() string {
	return os.Getenv("S3_ASSETS_BUCKET")
}

func SMSProvider() string {
	return getenv("SMS_PROVIDER", "campaign")
}

func SMSAPIURL() string {
	return os.Getenv("SMS_API_URL")
}

func SMSAPIUsername() string {
	return os.Getenv("SMS_API_USERNAME")
}

func SMSAPIPassword() string {
	return os.Getenv("SMS_API_PASSWORD")
}

func SMSSenderID() string {
	return getenv("SMS_SENDER_ID", "CINCO")
}

func SMSCountryCode() string {
	return getenv("SMS_COUNTRY_CODE", DEFAULT_COUNTRY_CODE)
}

func EmailProvider() string {
	return getenv("EMAIL_PROVIDER", "smtp")
}

func MailFrom() string {
	return getenv("MAIL_FROM", "no-reply@cinco.test")
}

func MailFromName() string {
	return getenv("MAIL_FROM_NAME", "Cinco Registration")
}

func AdminAPISecret() string {
	return os.Getenv("ADMIN_API_SECRET")
}

// OutboxSweepInterval controls how often undelivered notifications are picked up.
func OutboxSweepInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("OUTBOX_SWEEP_INTERVAL"))
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

func SMTPHost() string {
	return os.Getenv("SMTP_HOST")
}

func SMTPPort() int {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return 587
	}
	return port
}

func SMTPUsername() string {
	return os.Getenv("SMTP_USERNAME")
}

func SMTPPassword() string {
	return os.Getenv("SMTP_PASSWORD")
}

func RedisHost() string {
	return os.Getenv("REDIS_HOST")
}

func AWSRoleArn() string {
	return os.Getenv("AWS_IAM_ROLE_ARN")
}
