package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// Manifest is the resolved project manifest (Anchor.toml). A manifest that
// could not be read is still usable: endpoint and wallet fall back to
// documented defaults, while program and token lookups fail.
type Manifest struct {
	path    string
	v       *viper.Viper
	loadErr error
	getenv  func(string) string
	logger  zerolog.Logger
}

// FindManifest walks up from startDir at most depth levels looking for
// Anchor.toml.
func FindManifest(startDir string, depth int) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for i := 0; i < depth; i++ {
		candidate := filepath.Join(dir, constant.ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s not found within %d levels of %s", constant.ManifestFileName, depth, startDir)
}

// ResolveManifest finds and loads the manifest from the working directory.
// Lookup failures are recorded, not returned; see Manifest.
func ResolveManifest(logger zerolog.Logger) *Manifest {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	path, err := FindManifest(wd, constant.ManifestSearchDepth)
	if err != nil {
		m := &Manifest{loadErr: err, getenv: os.Getenv, logger: logger.With().Str("component", "manifest").Logger()}
		return m
	}
	return LoadManifest(path, logger)
}

// LoadManifest parses the manifest at path.
func LoadManifest(path string, logger zerolog.Logger) *Manifest {
	m := &Manifest{
		path:   path,
		getenv: os.Getenv,
		logger: logger.With().Str("component", "manifest").Logger(),
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		m.loadErr = fmt.Errorf("failed to read %s: %w", path, err)
		return m
	}
	m.v = v
	return m
}

// WithEnv replaces the environment lookup; used by tests.
func (m *Manifest) WithEnv(getenv func(string) string) *Manifest {
	m.getenv = getenv
	return m
}

// Path returns the manifest location, empty when none was found.
func (m *Manifest) Path() string {
	return m.path
}

// Err returns the error encountered while locating or parsing the manifest.
func (m *Manifest) Err() error {
	return m.loadErr
}

// Endpoint returns the RPC endpoint. RPC_URL wins over the manifest; an
// unreadable manifest falls back to the public testnet endpoint.
func (m *Manifest) Endpoint() string {
	if url := m.getenv(constant.EnvRPCURL); url != "" {
		return url
	}
	if m.v == nil || m.v.GetString("provider.cluster") == "" {
		m.logger.Warn().
			AnErr("manifest_error", m.loadErr).
			Str("fallback", constant.DefaultEndpoint).
			Msg("could not read cluster from manifest, using default testnet endpoint")
		return constant.DefaultEndpoint
	}
	return m.v.GetString("provider.cluster")
}

// WalletPath returns the tilde-expanded keypair path. WALLET_PATH wins over
// the manifest.
func (m *Manifest) WalletPath() string {
	raw := m.getenv(constant.EnvWalletPath)
	if raw == "" && m.v != nil {
		raw = m.v.GetString("provider.wallet")
	}
	if raw == "" {
		m.logger.Warn().
			AnErr("manifest_error", m.loadErr).
			Str("fallback", constant.DefaultWalletPath).
			Msg("could not read wallet from manifest, using default wallet")
		raw = constant.DefaultWalletPath
	}
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return raw
	}
	return expanded
}

// ProgramEnv returns "testnet" or "mainnet"; other values fall back to
// testnet with a warning.
func (m *Manifest) ProgramEnv() string {
	if m.v == nil {
		return constant.EnvTestnet
	}
	env := strings.ToLower(strings.TrimSpace(m.v.GetString("provider.program_env")))
	switch env {
	case constant.EnvTestnet, constant.EnvMainnet:
		return env
	case "":
		return constant.EnvTestnet
	default:
		m.logger.Warn().Str("program_env", env).Msg("unknown program_env, falling back to testnet")
		return constant.EnvTestnet
	}
}

// ProgramID resolves a program by logical name; dash and underscore forms
// are interchangeable.
func (m *Manifest) ProgramID(name string) (solana.PublicKey, error) {
	return m.lookup("programs", name)
}

// TokenMint resolves a token mint by logical name.
func (m *Manifest) TokenMint(name string) (solana.PublicKey, error) {
	return m.lookup("tokens", name)
}

// AllProgramIDs returns every program of the selected environment keyed by
// its normalized name.
func (m *Manifest) AllProgramIDs() (map[string]solana.PublicKey, error) {
	table, err := m.table("programs")
	if err != nil {
		return nil, err
	}
	out := make(map[string]solana.PublicKey, len(table))
	for name, raw := range table {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, merrors.New(merrors.ErrCodeConfig, "", fmt.Sprintf("program %s in %s is not a valid address", name, m.ProgramEnv()), err)
		}
		out[name] = pk
	}
	return out, nil
}

// ProgramNames returns the sorted logical names of the selected environment.
func (m *Manifest) ProgramNames() []string {
	table, err := m.table("programs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) lookup(section, name string) (solana.PublicKey, error) {
	table, err := m.table(section)
	if err != nil {
		return solana.PublicKey{}, err
	}
	key := normalizeName(name)
	raw, ok := table[key]
	if !ok {
		return solana.PublicKey{}, merrors.Newf(merrors.ErrCodeConfig, "",
			"%s entry %q not found for environment %s", section, name, m.ProgramEnv())
	}
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, merrors.New(merrors.ErrCodeConfig, "",
			fmt.Sprintf("%s entry %q for environment %s is not a valid address", section, name, m.ProgramEnv()), err)
	}
	return pk, nil
}

func (m *Manifest) table(section string) (map[string]string, error) {
	if m.v == nil {
		return nil, merrors.New(merrors.ErrCodeConfig, "", "manifest unavailable", m.loadErr)
	}
	env := m.ProgramEnv()
	raw := m.v.GetStringMapString(section + "." + env)
	if len(raw) == 0 {
		return nil, merrors.Newf(merrors.ErrCodeConfig, "", "no [%s.%s] table in %s", section, env, m.path)
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		out[normalizeName(k)] = val
	}
	return out, nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}
