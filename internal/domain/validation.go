package domain

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/model"
	"github.com/questx-lab/secretsanta/pkg/errorx"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 1000
	defaultCurrency      = "USD"
)

func checkName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow an empty %s", field)
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return "", errorx.New(errorx.BadRequest, "Too long %s (at most %d characters)", field, maxNameLength)
	}

	return name, nil
}

func checkDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", errorx.New(errorx.BadRequest,
			"Too long description (at most %d characters)", maxDescriptionLength)
	}

	return description, nil
}

func checkEmail(email string) (string, error) {
	normalized, ok := common.NormalizeEmail(email)
	if !ok {
		return "", errorx.New(errorx.BadRequest, "Invalid email address")
	}

	return normalized, nil
}

// checkEventDate accepts an empty value, the date is optional.
func checkEventDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", nil
	}

	if _, err := time.Parse(model.DefaultDateLayout, date); err != nil {
		return "", errorx.New(errorx.BadRequest, "Invalid event date, expected YYYY-MM-DD")
	}

	return date, nil
}

func checkEventTime(clock string) (string, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return "", nil
	}

	if _, err := time.Parse(model.DefaultClockLayout, clock); err != nil || len(clock) != 5 {
		return "", errorx.New(errorx.BadRequest, "Invalid event time, expected HH:MM")
	}

	return clock, nil
}

func checkBudget(budget float64) error {
	if math.IsNaN(budget) || math.IsInf(budget, 0) || budget < 0 {
		return errorx.New(errorx.BadRequest, "Budget must be a non-negative number")
	}

	return nil
}

// checkCurrency returns the upper-cased code, USD if empty.
func checkCurrency(currency string) (string, error) {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return defaultCurrency, nil
	}

	if len(currency) != 3 {
		return "", errorx.New(errorx.BadRequest, "Invalid currency, expected a 3-letter code")
	}

	for _, r := range currency {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return "", errorx.New(errorx.BadRequest, "Invalid currency, expected a 3-letter code")
		}
	}

	return strings.ToUpper(currency), nil
}
