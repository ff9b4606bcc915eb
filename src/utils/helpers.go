package utils

import (
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for QR payloads. Tests lower it.
var HashCost = bcrypt.DefaultCost

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// NormalizePhone rewrites local mobile formats into the international form
// expected by SMS providers:
//
//	09171234567  -> 639171234567
//	9171234567   -> 639171234567
//
// Anything else is returned as given (after stripping separators).
func NormalizePhone(number string, countryCode string) string {
	n := strings.TrimSpace(number)
	n = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(n)
	n = strings.TrimPrefix(n, "+")
	switch {
	case len(n) == 11 && strings.HasPrefix(n, "0"):
		return countryCode + n[1:]
	case len(n) == 10 && strings.HasPrefix(n, "9"):
		return countryCode + n
	}
	return n
}

// ToMinorUnits converts an amount to integer centavos/cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FormatCode(prefix string, sequence uint) string {
	return fmt.Sprintf("%s%06d", prefix, sequence)
}

func HashCode(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), HashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckCode(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
