package model

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

var numberType = reflect.TypeOf(Number(0))

// Number is a numeric field the backends sometimes send as a string
// ("12.5", "" or null).
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*n = 0
		return nil
	}

	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*n = 0
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string " + raw, Type: numberType}
	}
	*n = Number(v)
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}
