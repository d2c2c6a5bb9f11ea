package config

import (
	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/memo-clients/memoClient/constant"
)

// Programs holds the addresses every operation needs, resolved once per
// invocation.
type Programs struct {
	Mint    solana.PublicKey
	Burn    solana.PublicKey
	Profile solana.PublicKey
	Blog    solana.PublicKey
	Forum   solana.PublicKey
	Chat    solana.PublicKey
	Project solana.PublicKey

	// Token is the memo token mint (Token-2022).
	Token solana.PublicKey
}

// Programs resolves the memo program family and token mint for the
// selected environment. Any missing entry is a configuration error.
func (m *Manifest) Programs() (Programs, error) {
	var p Programs
	targets := []struct {
		name string
		dst  *solana.PublicKey
	}{
		{constant.ProgramMint, &p.Mint},
		{constant.ProgramBurn, &p.Burn},
		{constant.ProgramProfile, &p.Profile},
		{constant.ProgramBlog, &p.Blog},
		{constant.ProgramForum, &p.Forum},
		{constant.ProgramChat, &p.Chat},
		{constant.ProgramProject, &p.Project},
	}
	for _, t := range targets {
		pk, err := m.ProgramID(t.name)
		if err != nil {
			return Programs{}, err
		}
		*t.dst = pk
	}

	token, err := m.TokenMint(constant.TokenMemo)
	if err != nil {
		return Programs{}, err
	}
	p.Token = token
	return p, nil
}
