package persist

import "github.com/petrijr/asyncvalue/internal/persistence"

// Codec converts state to and from snapshot bytes.
type Codec[S any] interface {
	Encode(state S) ([]byte, error)
	Decode(data []byte) (S, error)
}

// GobCodec encodes state with encoding/gob. Error values inside an
// AsyncValue survive only as their message.
type GobCodec[S any] struct{}

func (GobCodec[S]) Encode(state S) ([]byte, error) {
	return persistence.EncodeValue(state)
}

func (GobCodec[S]) Decode(data []byte) (S, error) {
	return persistence.DecodeValue[S](data)
}
