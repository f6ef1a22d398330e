package persistence

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// EncodeValue serializes v with encoding/gob. v is encoded as its concrete
// type, so DecodeValue must be called with the same T.
func EncodeValue[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, fmt.Errorf("gob encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// DecodeValue decodes data produced by EncodeValue. Empty data yields the
// zero value of T.
func DecodeValue[T any](data []byte) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return v, fmt.Errorf("gob decode %T: %w", v, err)
	}
	return v, nil
}
