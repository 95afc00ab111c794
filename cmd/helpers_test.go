package cmd

import (
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) {
	t.Helper()
	var err error
	cfg, err = config.Load(t.TempDir())
	require.NoError(t, err)
}

// ---------------------------------------------------------------------------
// recipients file
// ---------------------------------------------------------------------------

func TestParseRecipients_WithAmounts(t *testing.T) {
	in := `# airdrop list
address,amount
0x000000000000000000000000000000000000aaaa, 1.5
0x000000000000000000000000000000000000bbbb,2
`
	recipients, amounts, err := parseRecipients(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "0x000000000000000000000000000000000000aaaa,0x000000000000000000000000000000000000bbbb", recipients)
	assert.Equal(t, "1.5,2", amounts)
}

func TestParseRecipients_AddressesOnly(t *testing.T) {
	recipients, amounts, err := parseRecipients(strings.NewReader("0xa\n0xb\n"))
	require.NoError(t, err)
	assert.Equal(t, "0xa,0xb", recipients)
	assert.Empty(t, amounts)
}

func TestParseRecipients_MixedAmounts(t *testing.T) {
	_, _, err := parseRecipients(strings.NewReader("0xa,1\n0xb\n"))
	assert.ErrorContains(t, err, "1 of 2")
}

func TestParseRecipients_TooManyFields(t *testing.T) {
	_, _, err := parseRecipients(strings.NewReader("0xa,1,extra\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestParseRecipients_FeedsNormalize(t *testing.T) {
	in := "0x000000000000000000000000000000000000aaaa,1\n0x000000000000000000000000000000000000bbbb,2\n"
	recipients, amounts, err := parseRecipients(strings.NewReader(in))
	require.NoError(t, err)

	req, err := airdrop.Normalize("0x000000000000000000000000000000000000cccc", recipients, amounts, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), req.TotalAmount)
}

// ---------------------------------------------------------------------------
// airdrop inputs
// ---------------------------------------------------------------------------

func withAirdropFlags(t *testing.T, token, recipients, file, amounts string) {
	t.Helper()
	prev := [4]string{airdropToken, airdropRecipients, airdropRecipientsFile, airdropAmounts}
	airdropToken, airdropRecipients, airdropRecipientsFile, airdropAmounts = token, recipients, file, amounts
	t.Cleanup(func() {
		airdropToken, airdropRecipients, airdropRecipientsFile, airdropAmounts = prev[0], prev[1], prev[2], prev[3]
	})
}

func TestAirdropInputs_RequiresToken(t *testing.T) {
	withAirdropFlags(t, "", "0xa", "", "1")
	_, _, err := airdropInputs()
	assert.ErrorContains(t, err, "--token")
}

func TestAirdropInputs_RequiresAmounts(t *testing.T) {
	withAirdropFlags(t, "0xt", "0xa", "", "")
	_, _, err := airdropInputs()
	assert.ErrorContains(t, err, "--amounts")
}

func TestAirdropInputs_FileAndFlagConflict(t *testing.T) {
	withAirdropFlags(t, "0xt", "0xa", "drop.csv", "1")
	_, _, err := airdropInputs()
	assert.Error(t, err)
}

func TestAirdropInputs_Flags(t *testing.T) {
	withAirdropFlags(t, "0xt", "0xa 0xb", "", "1,2")
	r, a, err := airdropInputs()
	require.NoError(t, err)
	assert.Equal(t, "0xa 0xb", r)
	assert.Equal(t, "1,2", a)
}

// ---------------------------------------------------------------------------
// preview warnings
// ---------------------------------------------------------------------------

func TestPreviewWarnings(t *testing.T) {
	a := common.HexToAddress("0xaaaa")
	req := &airdrop.AirdropRequest{
		TokenAddress: common.HexToAddress("0xcccc"),
		Recipients:   []common.Address{a, a},
		Amounts:      []*big.Int{big.NewInt(1), big.NewInt(2)},
		TotalAmount:  big.NewInt(3),
	}
	invalid := false
	p := &airdropPreview{
		req:        req,
		token:      &airdrop.TokenInfo{Symbol: "TT", Decimals: 6},
		state:      &airdrop.AllowanceState{Approved: big.NewInt(0), Required: big.NewInt(3), Balance: big.NewInt(1)},
		decimals:   18,
		listsValid: &invalid,
	}
	w := strings.Join(p.warnings(), "\n")
	assert.Contains(t, w, "more than once")
	assert.Contains(t, w, "below the total")
	assert.Contains(t, w, "--decimals 6")
	assert.Contains(t, w, "invalid")
}

func TestPreviewNoWarnings(t *testing.T) {
	req := &airdrop.AirdropRequest{
		Recipients:  []common.Address{common.HexToAddress("0xaaaa")},
		Amounts:     []*big.Int{big.NewInt(1)},
		TotalAmount: big.NewInt(1),
	}
	p := &airdropPreview{
		req:      req,
		token:    &airdrop.TokenInfo{Symbol: "TT", Decimals: 18},
		state:    &airdrop.AllowanceState{Approved: big.NewInt(1), Required: big.NewInt(1), Balance: big.NewInt(5)},
		decimals: 18,
	}
	assert.Empty(t, p.warnings())
	assert.Equal(t, "1 TT", p.tokens("1"))
}

func TestRecipientTableLimit(t *testing.T) {
	req := &airdrop.AirdropRequest{TotalAmount: big.NewInt(0)}
	for i := range 5 {
		req.Recipients = append(req.Recipients, common.BigToAddress(big.NewInt(int64(i+1))))
		req.Amounts = append(req.Amounts, big.NewInt(1))
	}
	out := recipientTable(req, 0, 3)
	assert.Contains(t, out, "and 2 more")
	assert.NotContains(t, recipientTable(req, 0, 0), "more")
}

// ---------------------------------------------------------------------------
// rpc candidates
// ---------------------------------------------------------------------------

func TestRPCCandidates_CustomFirst(t *testing.T) {
	loadTestConfig(t)
	t.Setenv(config.EnvRPCURL, "")
	c, err := chain.NewRegistry().GetByName("anvil")
	require.NoError(t, err)
	require.NoError(t, cfg.AddRPC("anvil", "http://custom:8545"))

	urls := rpcCandidates(c, "mainnet")
	require.NotEmpty(t, urls)
	assert.Equal(t, "http://custom:8545", urls[0])
	assert.Greater(t, len(urls), 1)
}

func TestRPCCandidates_EnvPins(t *testing.T) {
	loadTestConfig(t)
	t.Setenv(config.EnvRPCURL, " http://pinned:8545 ")
	c, err := chain.NewRegistry().GetByName("anvil")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://pinned:8545"}, rpcCandidates(c, "mainnet"))
}

func TestResolveChainName(t *testing.T) {
	c, err := resolveChainName("BASE")
	require.NoError(t, err)
	assert.Equal(t, "base", c.Name)

	_, err = resolveChainName("solana")
	assert.ErrorContains(t, err, "w3drop chains")
}

// ---------------------------------------------------------------------------
// convert
// ---------------------------------------------------------------------------

func TestToBase(t *testing.T) {
	v, err := toBase("2.25", 6)
	require.NoError(t, err)
	assert.Equal(t, "2250000", v.String())

	_, err = toBase("1.0000001", 6)
	assert.ErrorIs(t, err, units.ErrTooPrecise)
}

func TestParseRaw(t *testing.T) {
	v, err := parseRaw("0xff")
	require.NoError(t, err)
	assert.Equal(t, int64(255), v.Int64())

	v, err = parseRaw("1000")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v.Int64())

	_, err = parseRaw("-5")
	assert.Error(t, err)
	_, err = parseRaw("0xzz")
	assert.Error(t, err)
}
