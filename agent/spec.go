package agent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/tbxark/talentscout/types"
)

var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidPhone   = errors.New("invalid phone number")
	ErrInvalidYears   = errors.New("invalid years of experience")
	ErrEmptyTechStack = errors.New("empty tech stack")
	ErrUnknownField   = errors.New("unknown field")
)

const maxYearsExperience = 50

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidationError is a rejected answer for one field. The engine recovers
// from it by asking the same question again.
type ValidationError struct {
	Field types.Field
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormSpec describes the profile fields and how answers are accepted.
type FormSpec interface {
	Fields() []types.Field
	MissingFacts(collected map[types.Field]bool) []types.FieldInfo
	// Apply validates input for field f and stores it on c.
	Apply(c *types.Candidate, f types.Field, input string) error
	// Check validates the value already present on c for field f.
	Check(c types.Candidate, f types.Field) error
}

type CandidateSpec struct{}

var _ FormSpec = CandidateSpec{}

func (CandidateSpec) Fields() []types.Field {
	return types.FieldOrder
}

func (s CandidateSpec) MissingFacts(collected map[types.Field]bool) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, f := range s.Fields() {
		if collected[f] {
			continue
		}
		missing = append(missing, types.FieldInfo{
			JSONPointer: "/" + string(f),
			DisplayName: f.DisplayName(),
			Required:    true,
		})
	}
	return missing
}

func (CandidateSpec) Apply(c *types.Candidate, f types.Field, input string) error {
	value := strings.TrimSpace(input)
	switch f {
	case types.FieldFullName:
		c.FullName = value
	case types.FieldDesiredPosition:
		c.DesiredPosition = value
	case types.FieldCurrentLocation:
		c.CurrentLocation = value
	case types.FieldEmail:
		if !ValidEmail(value) {
			return &ValidationError{Field: f, Err: ErrInvalidEmail}
		}
		c.Email = value
	case types.FieldPhone:
		phone, ok := NormalizePhone(value)
		if !ok {
			return &ValidationError{Field: f, Err: ErrInvalidPhone}
		}
		c.Phone = phone
	case types.FieldYearsExperience:
		years, ok := ParseYears(value)
		if !ok {
			return &ValidationError{Field: f, Err: ErrInvalidYears}
		}
		c.YearsExperience = years
	case types.FieldTechStack:
		techs := ParseTechStack(input)
		if len(techs) == 0 {
			return &ValidationError{Field: f, Err: ErrEmptyTechStack}
		}
		c.TechStack = techs
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return nil
}

func (CandidateSpec) Check(c types.Candidate, f types.Field) error {
	switch f {
	case types.FieldFullName, types.FieldDesiredPosition, types.FieldCurrentLocation:
		return nil
	case types.FieldEmail:
		if !ValidEmail(c.Email) {
			return &ValidationError{Field: f, Err: ErrInvalidEmail}
		}
	case types.FieldPhone:
		if _, ok := NormalizePhone(c.Phone); !ok {
			return &ValidationError{Field: f, Err: ErrInvalidPhone}
		}
	case types.FieldYearsExperience:
		if c.YearsExperience < 0 || c.YearsExperience > maxYearsExperience {
			return &ValidationError{Field: f, Err: ErrInvalidYears}
		}
	case types.FieldTechStack:
		if len(c.TechStack) == 0 {
			return &ValidationError{Field: f, Err: ErrEmptyTechStack}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return nil
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizePhone strips spaces, parentheses, hyphens and plus signs and
// requires at least 10 remaining digits.
func NormalizePhone(s string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '(', r == ')', r == '-', r == '+':
			return -1
		}
		return r
	}, s)
	if len(digits) < 10 {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return digits, true
}

func ParseYears(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, false
	}
	years, err := strconv.Atoi(s)
	if err != nil || years < 0 || years > maxYearsExperience {
		return 0, false
	}
	return years, true
}

// ParseTechStack splits on commas, trims, and drops empty and repeated
// (case-insensitive) entries, keeping the first spelling seen.
func ParseTechStack(input string) []string {
	seen := map[string]bool{}
	var out []string
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key := strings.ToLower(token)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, token)
	}
	return out
}
