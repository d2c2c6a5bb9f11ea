package errors

import (
	"strings"
)

// Hint is the advisory reading of a known on-chain failure.
type Hint struct {
	Key    string `json:"key"`
	Advice string `json:"advice"`
}

type hintRule struct {
	patterns []string
	hint     Hint
}

// The ledger client only surfaces program failures as text (simulation
// logs, RPC error dumps), so classification is substring based. Rules are
// ordered from most to least specific; the first match wins.
var hintCatalog = []hintRule{
	{
		patterns: []string{"MemoRequired", "Memo required", "Missing memo"},
		hint:     Hint{Key: "memo_required", Advice: "Missing memo instruction: the memo must sit where the program reads it from the instructions sysvar"},
	},
	{
		patterns: []string{"MemoTooShort", "Memo too short"},
		hint:     Hint{Key: "memo_too_short", Advice: "Memo too short: memo data must be at least 69 bytes"},
	},
	{
		patterns: []string{"MemoTooLong", "Memo too long"},
		hint:     Hint{Key: "memo_too_long", Advice: "Memo too long: memo data must be at most 800 bytes"},
	},
	{
		patterns: []string{"UnsupportedMemoVersion", "DataVersion", "Unsupported memo version"},
		hint:     Hint{Key: "memo_version", Advice: "Unsupported memo version: payload and envelope versions must be 1"},
	},
	{
		patterns: []string{"InvalidMemoFormat", "InvalidMintMemoFormat", "Invalid memo format", "DataFormat"},
		hint:     Hint{Key: "memo_format", Advice: "Invalid memo format: memo must be base64 of the Borsh encoded payload"},
	},
	{
		patterns: []string{"PayloadTooLong", "UserDataTooLong", "Payload too long"},
		hint:     Hint{Key: "payload_too_long", Advice: "Payload too long: the envelope payload must be at most 787 bytes"},
	},
	{
		patterns: []string{"PubkeyMismatch", "SenderMismatch", "pubkey mismatch", "Sender mismatch"},
		hint:     Hint{Key: "actor_mismatch", Advice: "Actor mismatch: the pubkey in the memo must be the transaction signer"},
	},
	{
		patterns: []string{"GroupIdMismatch", "ProjectIdMismatch", "PostIdMismatch", "ID mismatch"},
		hint:     Hint{Key: "id_mismatch", Advice: "Id mismatch: the id in the memo must equal the instruction argument"},
	},
	{
		patterns: []string{"BurnAmountMismatch", "AmountMismatch", "amount mismatch"},
		hint:     Hint{Key: "amount_mismatch", Advice: "Burn amount mismatch: the memo envelope and the instruction argument must declare the same amount"},
	},
	{
		patterns: []string{"BurnAmountTooSmall", "Burn amount too small", "InsufficientBurnAmount"},
		hint:     Hint{Key: "burn_too_small", Advice: "Burn amount too small: raise the burn to the operation minimum"},
	},
	{
		patterns: []string{"BurnAmountTooLarge", "Burn amount too large"},
		hint:     Hint{Key: "burn_too_large", Advice: "Burn amount too large: the per-transaction ceiling is 1,000,000,000,000 tokens"},
	},
	{
		patterns: []string{"InvalidBurnAmount", "must be a multiple"},
		hint:     Hint{Key: "burn_not_whole", Advice: "Invalid burn amount: burns must be whole tokens"},
	},
	{
		patterns: []string{"BurnMessageTooLong", "MessageTooLong", "Message too long"},
		hint:     Hint{Key: "message_too_long", Advice: "Message too long: shorten the memo message"},
	},
	{
		patterns: []string{"NameTooLong", "DescriptionTooLong", "ImageTooLong", "WebsiteTooLong", "UrlTooLong", "AboutMeTooLong", "TooManyTags", "InvalidTag", "InvalidGroupName", "InvalidGroupDescription", "InvalidGroupImage", "InvalidPostTitle", "InvalidPostContent", "InvalidPostImage", "EmptyBlogName", "EmptyProjectName", "EmptyUsername", "EmptyMessage"},
		hint:     Hint{Key: "field_bounds", Advice: "Field out of bounds: a name, description, image, tag or message violates the program's length rules"},
	},
	{
		patterns: []string{"InvalidCategory", "Invalid category"},
		hint:     Hint{Key: "invalid_category", Advice: "Invalid category: payload category does not match the program"},
	},
	{
		patterns: []string{"InvalidOperation", "Invalid operation"},
		hint:     Hint{Key: "invalid_operation", Advice: "Invalid operation: payload operation does not match the instruction"},
	},
	{
		patterns: []string{"SupplyLimitReached", "Supply limit reached"},
		hint:     Hint{Key: "supply_limit", Advice: "Supply limit reached: the mint cap is exhausted, no further mints are possible"},
	},
	{
		patterns: []string{"NoMoreShardsAvailable", "no more shards", "No more shards"},
		hint:     Hint{Key: "no_more_shards", Advice: "No more shards available: the burn history index is full"},
	},
	{
		patterns: []string{"MemoTooFrequent", "too frequent"},
		hint:     Hint{Key: "memo_too_frequent", Advice: "Memo too frequent: wait for the group's minimum memo interval"},
	},
	{
		patterns: []string{"GroupNotFound", "ProjectNotFound", "PostNotFound"},
		hint:     Hint{Key: "entity_not_found", Advice: "Target record not found: check the id"},
	},
	{
		patterns: []string{"InvalidGroupId", "InvalidProjectId", "InvalidPostId", "ConstraintSeeds"},
		hint:     Hint{Key: "invalid_id", Advice: "Id does not match the next counter value or the PDA seeds; re-read the global counter"},
	},
	{
		patterns: []string{"Unauthorized", "UnauthorizedAdmin", "UnauthorizedMint", "ConstraintHasOne", "ConstraintSigner"},
		hint:     Hint{Key: "unauthorized", Advice: "Unauthorized: the signer is not allowed to perform this operation"},
	},
	{
		patterns: []string{"already in use"},
		hint:     Hint{Key: "already_in_use", Advice: "Account already in use: the record already exists"},
	},
	{
		patterns: []string{"InstructionFallbackNotFound", "InvalidDiscriminator", "InstructionDidNotDeserialize", "Fallback functions are not supported"},
		hint:     Hint{Key: "wrong_discriminator", Advice: "Wrong instruction discriminator: the program does not recognise this instruction"},
	},
	{
		patterns: []string{"AccountDiscriminatorMismatch", "AccountNotInitialized", "AccountNotFound", "could not find account"},
		hint:     Hint{Key: "account_missing", Advice: "Account not found or not initialized: run the matching init command first"},
	},
	{
		patterns: []string{"InvalidTokenAccount", "InvalidAccountData", "invalid account data"},
		hint:     Hint{Key: "invalid_token_account", Advice: "Invalid token account: create the Token-2022 associated account for this mint"},
	},
	{
		patterns: []string{"Invalid program id", "IncorrectProgramId", "InvalidProgramId"},
		hint:     Hint{Key: "invalid_program", Advice: "Invalid program id: check [programs] in the manifest for the selected environment"},
	},
	{
		patterns: []string{"insufficient funds", "InsufficientFunds", "Attempt to debit an account but found no record of a prior credit", "insufficient lamports"},
		hint:     Hint{Key: "insufficient_funds", Advice: "Insufficient funds: top up SOL for fees or tokens for the burn"},
	},
	{
		patterns: []string{"exceeded CUs meter", "ComputationalBudgetExceeded"},
		hint:     Hint{Key: "compute_budget", Advice: "Compute budget exceeded: raise the margin or the fallback limit"},
	},
}

// ClassifyText maps error text to a hint. The second return is false for
// unknown errors, which callers surface verbatim.
func ClassifyText(text string) (Hint, bool) {
	lower := strings.ToLower(text)
	for _, rule := range hintCatalog {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return rule.hint, true
			}
		}
	}
	return Hint{}, false
}

// Classify is ClassifyText over err's message.
func Classify(err error) (Hint, bool) {
	if err == nil {
		return Hint{}, false
	}
	return ClassifyText(err.Error())
}

// ClassifyLogs classifies program logs, scanning from the last line, where
// the failing program reports its error.
func ClassifyLogs(logs []string) (Hint, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if h, ok := ClassifyText(logs[i]); ok {
			return h, true
		}
	}
	return Hint{}, false
}
