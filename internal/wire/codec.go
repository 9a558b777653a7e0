package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode = func() cbor.EncMode {
		opts := cbor.CanonicalEncOptions()
		m, err := opts.EncMode()
		if err != nil {
			panic(fmt.Sprintf("wire: bad cbor encode options: %v", err))
		}
		return m
	}()
	decMode = func() cbor.DecMode {
		m, err := cbor.DecOptions{}.DecMode()
		if err != nil {
			panic(fmt.Sprintf("wire: bad cbor decode options: %v", err))
		}
		return m
	}()
)

// encode produces the canonical binary encoding used on the wire, matching the original's bincode::serialize in spirit (a
// deterministic binary format). Integers are encoded in CBOR's shortest
// form, not at a fixed width.
func encode(v interface{}) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, &SerializationError{Op: "encode", Err: err}
	}
	return b, nil
}

func decode(b []byte, v interface{}) error {
	if err := decMode.Unmarshal(b, v); err != nil {
		return &SerializationError{Op: "decode", Err: err}
	}
	return nil
}

// SerializationError wraps an encode/decode failure on the wire.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string { return "wire: " + e.Op + ": " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }
