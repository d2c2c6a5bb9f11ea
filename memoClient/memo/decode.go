package memo

import (
	bin "github.com/gagliardetto/binary"
)

// Shape is how a program expects its memo to be laid out.
type Shape int

const (
	// ShapeRaw is plain ASCII text (memo-mint).
	ShapeRaw Shape = iota
	// ShapeBare is a base64 Borsh payload with no envelope.
	ShapeBare
	// ShapeEnvelope is a base64 Borsh burn envelope around a payload.
	ShapeEnvelope
)

func (s Shape) String() string {
	switch s {
	case ShapeRaw:
		return "raw"
	case ShapeBare:
		return "bare"
	case ShapeEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

var schemas = map[string]func() Payload{
	CategoryChat + "/" + OpCreateGroup:       func() Payload { return &ChatGroupCreation{} },
	CategoryChat + "/" + OpSendMessage:       func() Payload { return &ChatMessage{} },
	CategoryChat + "/" + OpBurnForGroup:      func() Payload { return &ChatGroupBurn{} },
	CategoryProject + "/" + OpCreateProject:  func() Payload { return &ProjectCreation{} },
	CategoryProject + "/" + OpUpdateProject:  func() Payload { return &ProjectUpdate{} },
	CategoryProject + "/" + OpBurnForProject: func() Payload { return &ProjectBurn{} },
	CategoryForum + "/" + OpCreatePost:       func() Payload { return &PostCreation{} },
	CategoryForum + "/" + OpBurnForPost:      func() Payload { return &PostInteraction{} },
	CategoryForum + "/" + OpMintForPost:      func() Payload { return &PostInteraction{} },
	CategoryBlog + "/" + OpCreateBlog:        func() Payload { return &BlogCreation{} },
	CategoryBlog + "/" + OpUpdateBlog:        func() Payload { return &BlogUpdate{} },
	CategoryBlog + "/" + OpBurnForBlog:       func() Payload { return &BlogInteraction{} },
	CategoryBlog + "/" + OpMintForBlog:       func() Payload { return &BlogInteraction{} },
	CategoryProfile + "/" + OpCreateProfile:  func() Payload { return &ProfileCreation{} },
	CategoryProfile + "/" + OpUpdateProfile:  func() Payload { return &ProfileUpdate{} },
}

func knownCategory(category string) bool {
	switch category {
	case CategoryChat, CategoryProject, CategoryForum, CategoryBlog, CategoryProfile:
		return true
	}
	return false
}

// DecodePayload reads the schema header of a Borsh payload and decodes the
// rest into the matching schema. It does not validate field bounds.
func DecodePayload(raw []byte) (Payload, error) {
	var h Header
	if err := bin.NewBorshDecoder(raw).Decode(&h); err != nil {
		return nil, invalid("Invalid memo format: unreadable payload header: %v", err)
	}
	ctor, ok := schemas[h.Category+"/"+h.Operation]
	if !ok {
		if !knownCategory(h.Category) {
			return nil, invalid("Invalid category %q", h.Category)
		}
		return nil, invalid("Invalid operation %q for category %q", h.Operation, h.Category)
	}
	p := ctor()
	if err := bin.UnmarshalBorsh(p, raw); err != nil {
		return nil, invalid("Invalid memo format: %s/%s: %v", h.Category, h.Operation, err)
	}
	return p, nil
}

// Decoded is a memo read back from a transaction.
type Decoded struct {
	Shape    Shape
	Text     string
	Envelope *BurnMemo
	Payload  Payload
}

// DecodeMemo parses memo bytes of the given shape. Envelope payloads that
// carry no schema header (memo-burn) decode as BurnMessage when raw is true.
func DecodeMemo(memo []byte, shape Shape, raw bool) (Decoded, error) {
	out := Decoded{Shape: shape}
	switch shape {
	case ShapeRaw:
		if err := CheckLength(memo); err != nil {
			return out, err
		}
		out.Text = string(memo)
		return out, nil
	case ShapeBare:
		data, err := fromMemo(memo)
		if err != nil {
			return out, err
		}
		p, err := DecodePayload(data)
		if err != nil {
			return out, err
		}
		out.Payload = p
		return out, nil
	case ShapeEnvelope:
		env, err := DecodeBurnMemo(memo)
		if err != nil {
			return out, err
		}
		out.Envelope = &env
		if raw {
			out.Payload = &BurnMessage{Text: env.Payload}
			return out, nil
		}
		p, err := DecodePayload(env.Payload)
		if err != nil {
			return out, err
		}
		out.Payload = p
		return out, nil
	default:
		return out, invalid("unknown memo shape %d", shape)
	}
}
