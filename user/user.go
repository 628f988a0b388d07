package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/user-registry/internal/uuidutil"
)

// Gender is one of the enumerated gender values accepted by the form.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Status is the record's active flag. It is stored as the string literal
// "true" or "false", not as a boolean.
type Status string

const (
	StatusActive   Status = "true"
	StatusInactive Status = "false"
)

// Label returns the table rendering of the status.
func (s Status) Label() string {
	if s == StatusActive {
		return "Active"
	}
	return "InActive"
}

// dateLayout matches the serialized form of a browser Date (toJSON).
const dateLayout = "2006-01-02T15:04:05.000Z"

// ErrInvalidDate is returned when a date string is in neither accepted layout.
var ErrInvalidDate = errors.New("invalid date")

// Date is a date of birth. It serializes as a UTC timestamp and accepts either
// a timestamp or a plain YYYY-MM-DD date when decoded.
type Date struct {
	time.Time
}

// NewDate returns the Date for midnight UTC on the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate coerces the stored string form of a date into a Date.
func ParseDate(s string) (Date, error) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// String returns the serialized form of the date, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Values holds the validated, editable fields of a user record.
type Values struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DOB         Date   `json:"dob"`
	Gender      Gender `json:"gender"`
	Age         int    `json:"age"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phoneNumber"`
	IsActive    Status `json:"isActive"`
}

// User represents a user record in the collection.
type User struct {
	UID string `json:"uid"`
	Values
}

// New assigns a fresh identifier to the given values. It does not touch
// storage.
func New(v Values) User {
	return User{
		UID:    uuidutil.NewString(),
		Values: v,
	}
}

// Input returns the record's fields in the form used to pre-populate the
// editor.
func (u User) Input() Input {
	age := u.Age
	return Input{
		Name:        u.Name,
		Email:       u.Email,
		DOB:         u.DOB.String(),
		Gender:      string(u.Gender),
		Age:         &age,
		Country:     u.Country,
		PhoneNumber: u.PhoneNumber,
		IsActive:    string(u.IsActive),
	}
}
