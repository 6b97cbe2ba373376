package requestbody

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"bodylab/pkg/contracts/domain"
)

// FixedResponse is the acknowledgement written by every non-echo endpoint
const FixedResponse = "ok"

type jsonType string

const (
	jsonString  jsonType = "string"
	jsonInteger jsonType = "integer"
)

// fieldSpec binds one JSON key to one record field
type fieldSpec struct {
	key    string
	kind   jsonType
	assign func(rec *domain.HelloData, raw json.RawMessage) error
}

var helloDataSchema = []fieldSpec{
	{
		key:  "username",
		kind: jsonString,
		assign: func(rec *domain.HelloData, raw json.RawMessage) error {
			s, err := stringValue(raw)
			if err != nil {
				return err
			}
			rec.Username = s
			return nil
		},
	},
	{
		key:  "age",
		kind: jsonInteger,
		assign: func(rec *domain.HelloData, raw json.RawMessage) error {
			n, err := integerValue(raw)
			if err != nil {
				return err
			}
			rec.Age = n
			return nil
		},
	},
}

// Decode parses raw as a single JSON object holding every schema field.
// Extra keys are ignored; a duplicated key keeps its last value.
func Decode(raw []byte) (domain.HelloData, error) {
	var rec domain.HelloData

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return domain.HelloData{}, malformed(err)
		}
		return domain.HelloData{}, mismatch("", err)
	}
	if obj == nil {
		return domain.HelloData{}, mismatch("", fmt.Errorf("expected object, got null"))
	}

	for _, f := range helloDataSchema {
		val, ok := obj[f.key]
		if !ok {
			return domain.HelloData{}, mismatch(f.key, fmt.Errorf("missing required %s", f.kind))
		}
		if err := f.assign(&rec, val); err != nil {
			return domain.HelloData{}, mismatch(f.key, err)
		}
	}

	return rec, nil
}

// Encode serializes rec with the same keys Decode reads
func Encode(rec domain.HelloData) ([]byte, error) {
	return json.Marshal(rec)
}

// ReadBody drains r. Read failures are reported as ErrIOFailure.
func ReadBody(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Kind: ErrIOFailure, Cause: err}
	}
	return raw, nil
}

// RespondFixed returns the acknowledgement text
func RespondFixed() string {
	return FixedResponse
}

// RespondEcho returns rec unchanged so the caller can encode it back
func RespondEcho(rec domain.HelloData) domain.HelloData {
	return rec
}

func stringValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if typeOf(raw) != "string" {
		return "", fmt.Errorf("expected %s, got %s", jsonString, typeOf(raw))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func integerValue(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if typeOf(raw) != "number" {
		return 0, fmt.Errorf("expected %s, got %s", jsonInteger, typeOf(raw))
	}
	n, err := strconv.ParseInt(string(raw), 10, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("expected %s, got number %s", jsonInteger, raw)
	}
	return int(n), nil
}

// typeOf names the JSON type of an already validated value
func typeOf(raw []byte) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch c := raw[0]; {
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	default:
		return "number"
	}
}
