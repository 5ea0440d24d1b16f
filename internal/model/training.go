package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrNotArray is returned when trainings JSON is not an array.
var ErrNotArray = errors.New("trainings must be a JSON array")

// Training is a single training definition. Its shape belongs to the UI; hiit
// only stores and exchanges it as an opaque JSON value. Numbers decode as
// json.Number so they re-encode with their original text.
type Training any

// DecodeTrainings parses a JSON array of trainings.
// Anything other than an array (including null) yields ErrNotArray.
func DecodeTrainings(data []byte) ([]Training, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid data after top-level value")
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	trainings := make([]Training, len(items))
	for i, item := range items {
		trainings[i] = item
	}
	return trainings, nil
}

// EncodeTrainings marshals trainings as a JSON array, writing [] for nil.
func EncodeTrainings(trainings []Training, indent bool) ([]byte, error) {
	if trainings == nil {
		trainings = []Training{}
	}
	if indent {
		return json.MarshalIndent(trainings, "", "  ")
	}
	return json.Marshal(trainings)
}
