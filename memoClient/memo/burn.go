package memo

import (
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"

	"github.com/pushchain/memo-clients/memoClient/constant"
)

// BurnMessage is the free-form payload of memo-burn's process_burn. It is
// written into the envelope verbatim, with no schema header.
type BurnMessage struct {
	Text []byte
}

// NewBurnMessage builds the default payload text for a plain burn.
func NewBurnMessage(tokens uint64, at time.Time) *BurnMessage {
	text := fmt.Sprintf("SMOKE_TEST_BURN_%s_amount_%d_tokens", at.UTC().Format("2006-01-02 15:04:05 UTC"), tokens)
	return &BurnMessage{Text: []byte(text)}
}

func (p *BurnMessage) Category() string  { return CategoryBurn }
func (p *BurnMessage) Operation() string { return OpBurn }

func (p *BurnMessage) Validate(Expectation) error {
	if len(p.Text) > constant.MaxBurnPayloadBytes {
		return invalid("Payload too long: %d bytes (max %d)", len(p.Text), constant.MaxBurnPayloadBytes)
	}
	return nil
}

func (p BurnMessage) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.WriteBytes(p.Text, false)
}

func (p *BurnMessage) UnmarshalWithDecoder(dec *bin.Decoder) error {
	rest, err := dec.ReadNBytes(dec.Remaining())
	if err != nil {
		return err
	}
	p.Text = append([]byte(nil), rest...)
	return nil
}
