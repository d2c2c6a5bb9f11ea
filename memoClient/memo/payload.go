package memo

import (
	"fmt"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// PayloadVersion is the only schema version the programs accept.
const PayloadVersion uint8 = 1

// Categories.
const (
	CategoryChat    = "chat"
	CategoryProject = "project"
	CategoryForum   = "forum"
	CategoryBlog    = "blog"
	CategoryProfile = "profile"
	CategoryBurn    = "burn"
)

// Operation names carried in payload headers.
const (
	OpCreateGroup    = "create_group"
	OpSendMessage    = "send_message"
	OpBurnForGroup   = "burn_for_group"
	OpCreateProject  = "create_project"
	OpUpdateProject  = "update_project"
	OpBurnForProject = "burn_for_project"
	OpCreatePost     = "create_post"
	OpBurnForPost    = "burn_for_post"
	OpMintForPost    = "mint_for_post"
	OpCreateBlog     = "create_blog"
	OpUpdateBlog     = "update_blog"
	OpBurnForBlog    = "burn_for_blog"
	OpMintForBlog    = "mint_for_blog"
	OpCreateProfile  = "create_profile"
	OpUpdateProfile  = "update_profile"
	OpBurn           = "process_burn"
)

// Field bounds in bytes.
const (
	MaxGroupNameLen        = 64
	MaxGroupDescriptionLen = 256
	MaxGroupImageLen       = 256
	MaxTags                = 4
	MaxTagLen              = 32
	MaxChatMessageLen      = 512
	MaxProjectNameLen      = 64
	MaxProjectDescLen      = 256
	MaxProjectImageLen     = 256
	MaxProjectWebsiteLen   = 128
	MaxBurnMessageLen      = 696
	MaxPostTitleLen        = 128
	MaxPostContentLen      = 512
	MaxPostImageLen        = 256
	MaxBlogNameLen         = 64
	MaxBlogDescriptionLen  = 256
	MaxBlogImageLen        = 256
	MaxUsernameLen         = 32
	MaxProfileImageLen     = 256
	MaxAboutMeLen          = 128
	SignatureLen           = 64
)

// Payload is an operation-specific memo schema.
type Payload interface {
	Category() string
	Operation() string
	Validate(expected Expectation) error
}

// Expectation carries the values a payload must agree with: the
// transaction signer and, for id-addressed records, the instruction's id
// argument.
type Expectation struct {
	Actor solana.PublicKey
	ID    uint64
}

// Header is the common prefix of every schema.
type Header struct {
	Version   uint8
	Category  string
	Operation string
}

func newHeader(category, operation string) Header {
	return Header{Version: PayloadVersion, Category: category, Operation: operation}
}

func (h Header) check(category, operation string) error {
	if h.Version != PayloadVersion {
		return invalid("Unsupported memo version %d (expected %d)", h.Version, PayloadVersion)
	}
	if h.Category != category {
		return invalid("Invalid category %q (expected %q)", h.Category, category)
	}
	if h.Operation != operation {
		return invalid("Invalid operation %q (expected %q)", h.Operation, operation)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return merrors.Newf(merrors.ErrCodeValidation, "memo.validate", format, args...)
}

func checkActor(field, got string, expected solana.PublicKey) error {
	if got != expected.String() {
		return invalid("%s pubkey mismatch: memo has %q, signer is %s", field, got, expected)
	}
	return nil
}

func checkID(field string, got, expected uint64) error {
	if got != expected {
		return invalid("%s ID mismatch: memo has %d, instruction has %d", field, got, expected)
	}
	return nil
}

// checkLen enforces min <= len(value) <= max on the byte length.
func checkLen(field, value string, min, max int) error {
	n := len(value)
	if n < min {
		if min == 1 {
			return invalid("%s must not be empty", field)
		}
		return invalid("%s too short: %d bytes (min %d)", field, n, min)
	}
	if n > max {
		return invalid("%s too long: %d bytes (max %d)", field, n, max)
	}
	if !utf8.ValidString(value) {
		return invalid("%s is not valid UTF-8", field)
	}
	return nil
}

func checkOptLen(field string, value *string, min, max int) error {
	if value == nil {
		return nil
	}
	return checkLen(field, *value, min, max)
}

func checkTags(tags []string) error {
	if len(tags) > MaxTags {
		return invalid("TooManyTags: %d tags (max %d)", len(tags), MaxTags)
	}
	for i, tag := range tags {
		if err := checkLen(fmt.Sprintf("tag[%d]", i), tag, 1, MaxTagLen); err != nil {
			return err
		}
	}
	return nil
}

func checkMessage(value string, min, max int) error {
	if len(value) > max {
		return invalid("Message too long: %d bytes (max %d)", len(value), max)
	}
	return checkLen("message", value, min, max)
}
