package normalize

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/turbolytics/arquivo/internal"
)

var ErrInvalidJSON = errors.New("invalid json")

// Decode parses a JSON document keeping the key order of every object.
// Objects become *internal.Record, arrays []any, numbers float64.
func Decode(body []byte) (any, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}
	value, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		return decodeObject(value)
	case jsonparser.Array:
		return decodeArray(value)
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value %q", ErrInvalidJSON, value)
	}
}

func decodeObject(data []byte) (*internal.Record, error) {
	r := internal.NewRecord(nil, nil)
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		v, err := decodeValue(value, dataType)
		if err != nil {
			return err
		}
		r.Set(string(key), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeArray(data []byte) ([]any, error) {
	items := []any{}
	var decodeErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if decodeErr != nil {
			return
		}
		if err != nil {
			decodeErr = err
			return
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			decodeErr = err
			return
		}
		items = append(items, v)
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return items, nil
}
