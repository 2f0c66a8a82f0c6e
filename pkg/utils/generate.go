package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

// ==================== UUID & KEYS ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// CompositeID builds the document key shared by votes and favorites.
func CompositeID(userID, restaurantID uuid.UUID) string {
	return userID.String() + "_" + restaurantID.String()
}

// ==================== OTP ====================

func GenerateOTP(length int) string {
	if length <= 0 {
		length = 6
	}

	otp := make([]byte, 0, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			n = big.NewInt(int64(i % 10))
		}
		otp = strconv.AppendInt(otp, n.Int64(), 10)
	}

	return string(otp)
}

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}
