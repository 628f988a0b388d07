package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Input is a candidate record as submitted by the editor. Any field may be
// missing.
type Input struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DOB         string `json:"dob" validate:"required,pastdate"`
	Gender      string `json:"gender" validate:"required,oneof=male female other"`
	Age         *int   `json:"age" validate:"required,min=1"`
	Country     string `json:"country" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,len=10,number"`
	IsActive    string `json:"isActive" validate:"required,oneof=true false"`

	// decodeErrs holds fields whose JSON value had the wrong shape.
	decodeErrs FieldErrors
}

// UnmarshalJSON accepts string or typed values for every field. Numbers and
// booleans are read as their literal text; age also accepts a numeric string.
// A value that cannot be coerced is reported by Validate as a field error
// rather than failing the decode.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*in = Input{}
	text := map[string]*string{
		"name":        &in.Name,
		"email":       &in.Email,
		"dob":         &in.DOB,
		"gender":      &in.Gender,
		"country":     &in.Country,
		"phoneNumber": &in.PhoneNumber,
		"isActive":    &in.IsActive,
	}
	for field, dst := range text {
		v, ok := raw[field]
		if !ok {
			continue
		}
		s, err := scalarText(v)
		if err != nil {
			in.addDecodeErr(field)
			continue
		}
		*dst = s
	}

	if v, ok := raw["age"]; ok {
		age, err := coerceAge(v)
		if err != nil {
			in.addDecodeErr("age")
		} else {
			in.Age = age
		}
	}
	return nil
}

func (in *Input) addDecodeErr(field string) {
	if in.decodeErrs == nil {
		in.decodeErrs = FieldErrors{}
	}
	in.decodeErrs[field] = msgInvalid
}

var errNotScalar = errors.New("not a scalar value")

// scalarText returns a JSON scalar as text. null reads as empty.
func scalarText(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	switch v[0] {
	case '"':
		var s string
		err := json.Unmarshal(v, &s)
		return s, err
	case '{', '[':
		return "", errNotScalar
	default:
		// numbers, true, false
		return string(v), nil
	}
}

func coerceAge(v json.RawMessage) (*int, error) {
	s, err := scalarText(v)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FieldErrors maps a field name to a human-readable message. All violations
// of a single validation run are reported together.
type FieldErrors map[string]string

// Error implements error.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors reports whether err carries field errors.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	ok := errors.As(err, &fe)
	return fe, ok
}

const (
	msgRequired = "required"
	msgInvalid  = "invalid"
	msgPhone    = "Phone number must be 10 digits"
)

// Validator checks candidate records against the record schema.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator creates a validator. now supplies the upper bound for dates of
// birth; nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := &Validator{
		validate: validator.New(),
		now:      now,
	}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.validate.RegisterValidation("pastdate", v.notInFuture)

	return v
}

// latestZone is the furthest-ahead UTC offset in use. A date of birth is
// accepted when it is today or earlier somewhere.
var latestZone = time.FixedZone("UTC+14", 14*60*60)

func (v *Validator) notInFuture(fl validator.FieldLevel) bool {
	d, err := ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return !calendarDay(d.Time).After(calendarDay(v.now().In(latestZone)))
}

// calendarDay drops the clock part of t, keeping t's own date.
func calendarDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Validate returns the typed values for a valid input, or FieldErrors.
func (v *Validator) Validate(in Input) (Values, error) {
	if err := v.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Values{}, err
		}
		return Values{}, mergeFieldErrors(toFieldErrors(verrs), in.decodeErrs)
	}
	if len(in.decodeErrs) > 0 {
		return Values{}, mergeFieldErrors(FieldErrors{}, in.decodeErrs)
	}

	dob, err := ParseDate(in.DOB)
	if err != nil {
		return Values{}, FieldErrors{"dob": msgInvalid}
	}

	return Values{
		Name:        in.Name,
		Email:       in.Email,
		DOB:         dob,
		Gender:      Gender(in.Gender),
		Age:         *in.Age,
		Country:     in.Country,
		PhoneNumber: in.PhoneNumber,
		IsActive:    Status(in.IsActive),
	}, nil
}

func toFieldErrors(verrs validator.ValidationErrors) FieldErrors {
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe.Tag())
	}
	return out
}

// mergeFieldErrors overlays decode errors onto fe.
func mergeFieldErrors(fe, decodeErrs FieldErrors) FieldErrors {
	for field, msg := range decodeErrs {
		fe[field] = msg
	}
	return fe
}

func message(field, tag string) string {
	switch tag {
	case "required":
		return msgRequired
	case "email", "pastdate":
		return msgInvalid
	case "len", "number":
		if field == "phoneNumber" {
			return msgPhone
		}
		return msgInvalid
	default:
		// oneof and min fall back to the generic prompt shown by the form.
		return msgRequired
	}
}
