package entity

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/questx-lab/secretsanta/pkg/enum"
)

type PartyStatus string

var (
	PartyOpen   = enum.New(PartyStatus("open"))
	PartyLocked = enum.New(PartyStatus("locked"))
)

// Scan rejects any stored status other than the known ones.
func (s *PartyStatus) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into party status", value)
	}

	status, err := enum.ToEnum[PartyStatus](raw)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

func (s PartyStatus) Value() (driver.Value, error) {
	if !enum.IsValid(s) {
		return nil, fmt.Errorf("invalid party status %q", string(s))
	}

	return string(s), nil
}

type Party struct {
	Base

	Name        string `gorm:"not null"`
	Description string
	EventDate   string
	EventTime   string
	Budget      sql.NullFloat64
	Currency    string

	OrganizerName  string `gorm:"not null"`
	OrganizerEmail string `gorm:"not null"`

	PasscodeHash   string `gorm:"not null"`
	SealedPasscode string `gorm:"not null"`

	Status   PartyStatus `gorm:"type:varchar(16);not null;index"`
	LockedAt sql.NullTime
}
