package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is a boolean stored and transmitted as the literal strings "True" and
// "False". Existing rows and the dashboard frontend depend on that exact
// casing, so Flag never emits anything else.
type Flag bool

const (
	FlagTrue  = "True"
	FlagFalse = "False"
)

func (f Flag) String() string {
	if f {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) Bool() bool { return bool(f) }

// ParseFlag accepts "True"/"False" in any case, "1"/"0" and "yes"/"no".
// Legacy rows were seeded with "0"/"1" before the True/False convention.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag value %q: expected True or False", s)
	}
}

// Value implements driver.Valuer.
func (f Flag) Value() (driver.Value, error) {
	return f.String(), nil
}

// Scan implements sql.Scanner. NULL and unrecognized legacy values read as
// False so a single bad row cannot break a listing.
func (f *Flag) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*f = false
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		*f = v != 0
		return nil
	case bool:
		*f = Flag(v)
		return nil
	default:
		return fmt.Errorf("unsupported flag column type %T", src)
	}
	parsed, err := ParseFlag(s)
	if err != nil {
		*f = false
		return nil
	}
	*f = parsed
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON accepts a JSON string or a JSON boolean.
func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case bool:
		*f = Flag(value)
	case string:
		parsed, err := ParseFlag(value)
		if err != nil {
			return err
		}
		*f = parsed
	default:
		return fmt.Errorf("invalid flag value: %v (type %T)", v, v)
	}
	return nil
}
