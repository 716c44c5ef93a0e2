package session

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

// Marshaller converts session records to and from file contents.
type Marshaller interface {
	Marshal(r Record) ([]byte, error)
	Unmarshal(data []byte) (Record, error)
}

// JSONMarshaller stores records as JSON documents.
type JSONMarshaller struct{}

var errEmptyPayload = errors.New("empty payload")

// decoding keeps numbers as json.Number so integers beyond 2^53 reload intact.
var decoding = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

func (JSONMarshaller) Marshal(r Record) ([]byte, error) {
	return canonical.Marshal(r)
}

func (JSONMarshaller) Unmarshal(data []byte) (Record, error) {
	var r Record
	if len(data) == 0 {
		return r, errEmptyPayload
	}
	if err := decoding.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	return r, nil
}
