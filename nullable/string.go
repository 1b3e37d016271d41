package nullable

import (
	"database/sql"
	"encoding/json"
)

// String is a sql.NullString that encodes to JSON as a string or null
type String struct {
	sql.NullString
}

func StringFrom(s string) String {
	return String{sql.NullString{String: s, Valid: true}}
}

// StringFromEmpty maps "" to null
func StringFromEmpty(s string) String {
	if s == "" {
		return String{}
	}
	return StringFrom(s)
}

func (n String) MarshalJSON() ([]byte, error) {
	if n.Valid {
		return json.Marshal(n.String)
	}
	return []byte("null"), nil
}

func (n *String) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		n.String = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.String); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n String) ForceValue() string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func (n String) IsNil() bool {
	return !n.Valid
}
