package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test accounts #0 and #1. Never fund on mainnet.
const (
	testPrivKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	otherPrivKeyHex = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := FileKeystore(t.TempDir(), func(string) (string, error) { return "testpass", nil })
	require.NoError(t, err)
	return ks
}

func testTx() *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(31337),
		Nonce:     0,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       100_000,
		To:        &to,
		Value:     big.NewInt(0),
	})
}

// ---------------------------------------------------------------------------
// Keystore
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	assert.Equal(t, "abc123", normaliseHexKey("0xabc123"))
	assert.Equal(t, "abc123", normaliseHexKey("0Xabc123"))
	assert.Equal(t, "abc", normaliseHexKey("  0xabc  "))
	assert.Equal(t, "", normaliseHexKey("0x"))
	assert.Equal(t, "", normaliseHexKey(""))
}

func TestFileKeystoreRoundTrip(t *testing.T) {
	ks := testKeystore(t)

	ref, err := ks.Store("deployer", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3drop.deployer", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

func TestKeystoreEnvOverride(t *testing.T) {
	t.Setenv(EnvPrivateKey, "0x"+testPrivKeyHex)
	ks := &Keystore{ring: nil}

	got, err := ks.Retrieve("w3drop.anything")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestNilRingKeystore(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := &Keystore{ring: nil}

	_, err := ks.Store("x", testPrivKeyHex)
	assert.Error(t, err)
	_, err = ks.Retrieve("w3drop.x")
	assert.ErrorContains(t, err, "not available")
	assert.NoError(t, ks.Delete("w3drop.x"))
}

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("a", "0xdead")
	require.NoError(t, err)

	v, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "dead", v)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Signer
// ---------------------------------------------------------------------------

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, NewInMemoryKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, NewInMemoryKeystore()).SignTx(testTx(), big.NewInt(31337))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignTxKeyNotFound(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	w := &Wallet{Name: "missing", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3drop.missing"}
	_, err := NewSigner(w, testKeystore(t)).SignTx(testTx(), big.NewInt(31337))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxInvalidKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("bad", "nothex")
	w := &Wallet{Name: "bad", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}

	_, err := NewSigner(w, ks).SignTx(testTx(), big.NewInt(31337))
	assert.ErrorContains(t, err, "parsing private key")
}

func TestSignTxKeyAddressMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("w", otherPrivKeyHex)
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}

	_, err := NewSigner(w, ks).SignTx(testTx(), big.NewInt(31337))
	assert.ErrorContains(t, err, "belongs to")
}

func TestSignTxRecoversSender(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("anvil0", testPrivKeyHex)
	require.NoError(t, err)
	w := &Wallet{Name: "anvil0", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}

	raw, err := NewSigner(w, ks).SignTx(testTx(), big.NewInt(31337))
	require.NoError(t, err)

	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(raw))
	from, err := types.Sender(types.NewLondonSigner(big.NewInt(31337)), &decoded)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

type fixedChain struct {
	id  int64
	err error
}

func (f fixedChain) ChainID(context.Context) (int64, error) { return f.id, f.err }

func TestSessionConnected(t *testing.T) {
	s := NewSession(&Wallet{Name: "w", Address: testSignerAddr}, 31337)
	acct, ok := s.Account()
	assert.True(t, ok)
	assert.Equal(t, common.HexToAddress(testSignerAddr), acct)
	assert.Equal(t, int64(31337), s.ChainID())
}

func TestSessionDisconnected(t *testing.T) {
	s := NewSession(nil, 1)
	_, ok := s.Account()
	assert.False(t, ok)
	assert.Equal(t, int64(1), s.ChainID())
}

func TestConnectReadsChainID(t *testing.T) {
	s, err := Connect(context.Background(), &Wallet{Address: testSignerAddr}, fixedChain{id: 84532})
	require.NoError(t, err)
	assert.Equal(t, int64(84532), s.ChainID())
}

func TestConnectChainIDError(t *testing.T) {
	_, err := Connect(context.Background(), nil, fixedChain{err: errors.New("dial tcp: refused")})
	assert.ErrorContains(t, err, "reading chain id")
}
