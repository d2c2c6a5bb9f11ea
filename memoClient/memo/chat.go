package memo

import (
	"github.com/mr-tron/base58"
)

// ChatGroupCreation is carried in the burn envelope of create_chat_group.
// It has no actor field; the creator is the transaction signer.
type ChatGroupCreation struct {
	Header
	GroupID         uint64
	Name            string
	Description     string
	Image           string
	Tags            []string
	MinMemoInterval *int64 `bin:"optional"`
}

func NewChatGroupCreation(groupID uint64, name, description, image string, tags []string, minMemoInterval *int64) *ChatGroupCreation {
	return &ChatGroupCreation{
		Header:          newHeader(CategoryChat, OpCreateGroup),
		GroupID:         groupID,
		Name:            name,
		Description:     description,
		Image:           image,
		Tags:            tags,
		MinMemoInterval: minMemoInterval,
	}
}

func (p *ChatGroupCreation) Category() string  { return CategoryChat }
func (p *ChatGroupCreation) Operation() string { return OpCreateGroup }

func (p *ChatGroupCreation) Validate(expected Expectation) error {
	if err := p.check(CategoryChat, OpCreateGroup); err != nil {
		return err
	}
	if err := checkID("group", p.GroupID, expected.ID); err != nil {
		return err
	}
	if err := checkLen("name", p.Name, 1, MaxGroupNameLen); err != nil {
		return err
	}
	if err := checkLen("description", p.Description, 0, MaxGroupDescriptionLen); err != nil {
		return err
	}
	if err := checkLen("image", p.Image, 0, MaxGroupImageLen); err != nil {
		return err
	}
	if p.MinMemoInterval != nil && *p.MinMemoInterval < 0 {
		return invalid("min_memo_interval must not be negative: %d", *p.MinMemoInterval)
	}
	return checkTags(p.Tags)
}

// ChatMessage is sent bare, without the burn envelope.
type ChatMessage struct {
	Header
	GroupID    uint64
	Sender     string
	Message    string
	Receiver   *string `bin:"optional"`
	ReplyToSig *string `bin:"optional"`
}

func NewChatMessage(groupID uint64, sender, message string, receiver, replyToSig *string) *ChatMessage {
	return &ChatMessage{
		Header:     newHeader(CategoryChat, OpSendMessage),
		GroupID:    groupID,
		Sender:     sender,
		Message:    message,
		Receiver:   receiver,
		ReplyToSig: replyToSig,
	}
}

func (p *ChatMessage) Category() string  { return CategoryChat }
func (p *ChatMessage) Operation() string { return OpSendMessage }

func (p *ChatMessage) Validate(expected Expectation) error {
	if err := p.check(CategoryChat, OpSendMessage); err != nil {
		return err
	}
	if err := checkID("group", p.GroupID, expected.ID); err != nil {
		return err
	}
	if err := checkActor("sender", p.Sender, expected.Actor); err != nil {
		return err
	}
	if err := checkMessage(p.Message, 1, MaxChatMessageLen); err != nil {
		return err
	}
	if p.Receiver != nil {
		if err := checkBase58Len("receiver", *p.Receiver, 32); err != nil {
			return err
		}
	}
	if p.ReplyToSig != nil {
		if err := checkBase58Len("reply_to_sig", *p.ReplyToSig, SignatureLen); err != nil {
			return err
		}
	}
	return nil
}

// ChatGroupBurn is carried in the burn envelope of burn_tokens_for_group.
type ChatGroupBurn struct {
	Header
	GroupID uint64
	Burner  string
	Message string
}

func NewChatGroupBurn(groupID uint64, burner, message string) *ChatGroupBurn {
	return &ChatGroupBurn{
		Header:  newHeader(CategoryChat, OpBurnForGroup),
		GroupID: groupID,
		Burner:  burner,
		Message: message,
	}
}

func (p *ChatGroupBurn) Category() string  { return CategoryChat }
func (p *ChatGroupBurn) Operation() string { return OpBurnForGroup }

func (p *ChatGroupBurn) Validate(expected Expectation) error {
	if err := p.check(CategoryChat, OpBurnForGroup); err != nil {
		return err
	}
	if err := checkID("group", p.GroupID, expected.ID); err != nil {
		return err
	}
	if err := checkActor("burner", p.Burner, expected.Actor); err != nil {
		return err
	}
	return checkMessage(p.Message, 0, MaxChatMessageLen)
}

func checkBase58Len(field, value string, want int) error {
	raw, err := base58.Decode(value)
	if err != nil {
		return invalid("%s is not valid base58: %v", field, err)
	}
	if len(raw) != want {
		return invalid("%s decodes to %d bytes (expected %d)", field, len(raw), want)
	}
	return nil
}
