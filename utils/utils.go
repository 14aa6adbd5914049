package utils

import (
	rndm "math/rand"
	"net/http"
	"strconv"
	"strings"

	"tamias/globals"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digitRunes = []rune("0123456789")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// GenerateRandomDigitString creates a random numeric string of length n.
func GenerateRandomDigitString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = digitRunes[rndm.Intn(len(digitRunes))]
	}
	return string(b)
}

// --- Request Context Helpers ---

// GetEmployeeIDFromRequest returns the authenticated employee ID, or "".
func GetEmployeeIDFromRequest(r *http.Request) string {
	id, _ := r.Context().Value(globals.EmployeeIDKey).(string)
	return id
}

// GetStoreIDFromRequest returns the authenticated employee's store ID, or "".
func GetStoreIDFromRequest(r *http.Request) string {
	id, _ := r.Context().Value(globals.StoreIDKey).(string)
	return id
}

// GetRoleFromRequest returns the authenticated employee's role, or "".
func GetRoleFromRequest(r *http.Request) string {
	role, _ := r.Context().Value(globals.RoleKey).(string)
	return role
}

// --- Currency ---

// FormatRupiah renders an integer rupiah amount as "Rp 25.000".
// Amounts are whole rupiah; there are no fractional units.
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
