package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Json is the codec shared by the websocket protocol and the HTTP API.
var Json = jsoniter.ConfigCompatibleWithStandardLibrary

// UnmarshalJson re-decodes a payload that was decoded into a generic value (map, slice, number) into T.
func UnmarshalJson[T any](v any) (T, error) {
	if v == nil {
		return *new(T), errors.New("empty payload")
	}
	data, err := Json.Marshal(v)
	if err != nil {
		return *new(T), errors.WithMessage(err, "marshal json")
	}
	var result T
	if err := Json.Unmarshal(data, &result); err != nil {
		return *new(T), errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}
