package record

import (
	"strings"

	"github.com/tbxark/talentscout/patch"
)

var maskablePaths = map[string]bool{
	"/email": true,
	"/phone": true,
}

// Mask returns a copy of rec with the contact fields redacted.
func Mask(rec CandidateRecord) (CandidateRecord, error) {
	var ops []patch.Operation
	if rec.Email != "" {
		ops = append(ops, patch.Replace("/email", MaskEmail(rec.Email)))
	}
	if rec.Phone != "" {
		ops = append(ops, patch.Replace("/phone", MaskPhone(rec.Phone)))
	}
	return patch.ApplyRFC6902(rec, ops, maskablePaths)
}

// MaskEmail keeps the first and last character of the local part.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return maskAll(email)
	}
	runes := []rune(local)
	if len(runes) <= 2 {
		return local + "@" + domain
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1]) + "@" + domain
}

// MaskPhone keeps the last four characters.
func MaskPhone(phone string) string {
	runes := []rune(phone)
	if len(runes) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

func maskAll(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}
