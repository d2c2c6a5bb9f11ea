package constant

import "os"

// <NodeDir>/                    (e.g., /home/user/.memoclient)
// └── config/
//	└── memoclient_config.json
// └── databases/
//	└── run_log.db

const (
	NodeDir = ".memoclient"

	ConfigSubdir   = "config"
	ConfigFileName = "memoclient_config.json"

	DatabasesSubdir = "databases"
	RunLogFileName  = "run_log.db"
)

var DefaultNodeHome = os.ExpandEnv("$HOME/") + NodeDir

// Manifest discovery and fallbacks.
const (
	ManifestFileName     = "Anchor.toml"
	ManifestSearchDepth  = 5
	DefaultEndpoint      = "https://rpc.testnet.x1.xyz"
	DefaultWalletPath    = "~/.config/solana/id.json"
	EnvRPCURL            = "RPC_URL"
	EnvWalletPath        = "WALLET_PATH"
	EnvComputeUnitMargin = "MEMO_CU_MARGIN"
	EnvLogLevel          = "MEMO_LOG_LEVEL"
)

// Program environments.
const (
	EnvTestnet = "testnet"
	EnvMainnet = "mainnet"
)

// Logical program names as they appear under [programs.<env>].
const (
	ProgramMint    = "memo_mint"
	ProgramBurn    = "memo_burn"
	ProgramProfile = "memo_profile"
	ProgramBlog    = "memo_blog"
	ProgramForum   = "memo_forum"
	ProgramChat    = "memo_chat"
	ProgramProject = "memo_project"

	// TokenMemo is the logical name of the mint under [tokens.<env>].
	TokenMemo = "memo_token"
)

// Token amounts are raw units; one token is DecimalFactor units.
const (
	DecimalFactor uint64 = 1_000_000

	// MaxBurnPerTx is the per-transaction burn ceiling in tokens.
	MaxBurnPerTx uint64 = 1_000_000_000_000

	// SupplyCap is the hard mint cap in units (10T tokens).
	SupplyCap uint64 = 10_000_000_000_000 * DecimalFactor
)

// Memo size envelope, in bytes of instruction data.
const (
	MinMemoLength       = 69
	MaxMemoLength       = 800
	BurnMemoOverhead    = 13
	MaxBurnPayloadBytes = MaxMemoLength - BurnMemoOverhead
)

// Minimum burns in tokens.
const (
	MinBlogBurnTokens          uint64 = 1
	MinPostBurnTokens          uint64 = 1
	MinProfileBurnTokens       uint64 = 420
	MinChatGroupCreateTokens   uint64 = 42_069
	MinChatGroupBurnTokens     uint64 = 1
	MinProjectCreateTokens     uint64 = 42_069
	MinProjectUpdateTokens     uint64 = 42_069
	MinProjectBurnTokens       uint64 = 420
	DefaultSmokeBalanceTokens  uint64 = 10
	DefaultChatSmokeBurnTokens uint64 = 1_000
)

// Compute budget ceilings and fallbacks in CU.
const (
	MaxComputeUnitLimit     uint32 = 1_400_000
	LightSimulationCULimit  uint32 = 400_000
	HeavySimulationCULimit  uint32 = 1_400_000
	DefaultLightCULimit     uint32 = 200_000
	DefaultHeavyCULimit     uint32 = 400_000
	DefaultComputeUnitMargin       = 1.10
	MinComputeUnitMargin           = 1.02
	MaxComputeUnitMargin           = 1.20
)

// Tokens converts a whole-token amount to raw units.
func Tokens(n uint64) uint64 {
	return n * DecimalFactor
}
