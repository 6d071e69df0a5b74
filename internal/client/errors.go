package client

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ErrSeafile is matched by every failure the client reports.
var ErrSeafile = errors.New("seafile error")

const defaultRequestError = "Request error."

// ConnectionError reports a transport failure or a response body that could
// not be decoded.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "Connection error" }

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSeafile) hold.
func (e *ConnectionError) Is(target error) bool { return target == ErrSeafile }

// RequestError reports a response with status >= 400. Message is built from
// the server's error object.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrSeafile) hold.
func (e *RequestError) Is(target error) bool { return target == ErrSeafile }

// IsConnectionError reports whether err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsRequestError reports whether err is or wraps a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// newRequestError builds a RequestError from an already validated JSON error
// body. Fields are visited in document order: strings are used verbatim,
// lists become "field: a; b", empty values are skipped. Anything other than a
// non-empty object yields the generic message.
func newRequestError(body []byte) *RequestError {
	fields, ok := objectFields(body)
	if !ok || len(fields) == 0 {
		return &RequestError{Message: defaultRequestError}
	}

	var parts []string
	for _, f := range fields {
		var v any
		if err := json.Unmarshal(f.value, &v); err != nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				parts = append(parts, val)
			}
		case []any:
			if len(val) == 0 {
				continue
			}
			items := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok {
					items = append(items, s)
				} else {
					items = append(items, fmt.Sprint(item))
				}
			}
			parts = append(parts, f.name+": "+strings.Join(items, "; "))
		}
	}

	if len(parts) == 0 {
		return &RequestError{Message: defaultRequestError}
	}
	return &RequestError{Message: strings.Join(parts, ".\n")}
}

type objectField struct {
	name  string
	value json.RawMessage
}

// objectFields returns the top-level members of a JSON object in the order
// they appear. ok is false when body is not an object.
func objectFields(body []byte) ([]objectField, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, isDelim := tok.(json.Delim); !isDelim || d != '{' {
		return nil, false
	}

	var fields []objectField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, isString := keyTok.(string)
		if !isString {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		fields = append(fields, objectField{name: key, value: raw})
	}
	return fields, true
}
