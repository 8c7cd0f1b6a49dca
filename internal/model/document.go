package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Collections known to the backend.
const (
	CollectionUsers          = "tbl_User"
	CollectionTransactions   = "tbl_Transactions"
	CollectionSupportRequest = "tbl_SupportRequests"
)

// Fields is the schemaless payload of a stored record.
type Fields map[string]any

// Document is a point-in-time snapshot of one record.
type Document struct {
	Collection string
	ID         string
	Exists     bool
	Fields     Fields
	UpdatedAt  time.Time
}

// Query is an equality filter over one field with an optional ordering.
type Query struct {
	Collection string
	Field      string
	Value      string
	OrderBy    string
	Descending bool
}

// String returns the field as a string; non-strings are formatted, nil is empty.
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value of the field or 0.
func (f Fields) Float(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		n, _ := v.Float64()
		return n
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool reports true only when the field holds the boolean true.
func (f Fields) Bool(key string) bool {
	v, ok := f[key].(bool)
	return ok && v
}

// Time parses RFC 3339 strings and passes time values through.
func (f Fields) Time(key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
