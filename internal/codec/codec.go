// Package codec converts chat messages to and from their wire form: a CBOR
// map with the text keys "name" and "message".
package codec

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/dkeye/bubble/internal/domain"
)

// wireMessage uses pointers so a missing key can be told apart from an
// empty string.
type wireMessage struct {
	Name    *string `cbor:"name"`
	Message *string `cbor:"message"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		UTF8:        cbor.UTF8RejectInvalid,
		MaxMapPairs: 16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

func Encode(m domain.Message) ([]byte, error) {
	b, err := encMode.Marshal(wireMessage{Name: &m.Name, Message: &m.Message})
	if err != nil {
		return nil, domain.WrapError(domain.ErrorInvalidArgument, "encode message", err)
	}
	return b, nil
}

// Decode rejects anything that is not exactly one map carrying both keys.
func Decode(data []byte) (domain.Message, error) {
	var w wireMessage
	if err := decMode.Unmarshal(data, &w); err != nil {
		return domain.Message{}, domain.WrapError(domain.ErrorDecode, "decode message", err)
	}
	if w.Name == nil || w.Message == nil {
		return domain.Message{}, domain.NewError(domain.ErrorDecode, "decode message: missing field")
	}
	return domain.Message{Name: *w.Name, Message: *w.Message}, nil
}
