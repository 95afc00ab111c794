package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	spenderAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeCaller struct {
	to     common.Address
	data   []byte
	result []byte
	err    error
}

func (f *fakeCaller) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	f.to, f.data = to, data
	return f.result, f.err
}

type fakeTxBackend struct {
	estimateErr error
	sendErr     error
	sent        []byte
	calls       []string
}

func (f *fakeTxBackend) GetPendingNonce(context.Context, common.Address) (uint64, error) {
	f.calls = append(f.calls, "nonce")
	return 7, nil
}

func (f *fakeTxBackend) GasPrice(context.Context) (*big.Int, error) {
	f.calls = append(f.calls, "gasPrice")
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeTxBackend) EstimateGas(context.Context, common.Address, common.Address, []byte) (uint64, error) {
	f.calls = append(f.calls, "estimate")
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return 55_000, nil
}

func (f *fakeTxBackend) SendRawTransaction(_ context.Context, signed []byte) (common.Hash, error) {
	f.calls = append(f.calls, "send")
	f.sent = signed
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	return common.HexToHash("0xabc"), nil
}

type fakeSigner struct {
	tx *types.Transaction
}

func (s *fakeSigner) Address() common.Address { return ownerAddr }

func (s *fakeSigner) SignTx(tx *types.Transaction, _ *big.Int) ([]byte, error) {
	s.tx = tx
	return []byte("signed"), nil
}

// ---------------------------------------------------------------------------
// ABIs + selectors
// ---------------------------------------------------------------------------

func TestEmbeddedABIsHaveAirdropMethods(t *testing.T) {
	for _, fn := range []string{FnName, FnSymbol, FnDecimals, FnBalanceOf, FnAllowance, FnApprove} {
		_, ok := ERC20().Methods[fn]
		assert.True(t, ok, "erc20 ABI missing %s", fn)
	}
	m, ok := Airdrop().Methods[FnAirdropERC20]
	require.True(t, ok)
	assert.Equal(t, "airdropERC20(address,address[],uint256[],uint256)", m.Sig)
}

func TestSelectorKnownValues(t *testing.T) {
	assert.Equal(t, "0xa9059cbb", Selector("transfer(address,uint256)"))
	assert.Equal(t, "0x095ea7b3", Selector("approve(address, uint256)"))
	assert.Equal(t, "0x70a08231", Selector("balanceOf(address)"))
}

func TestMethodSelectorMatchesKeccak(t *testing.T) {
	sig, sel, err := MethodSelector(Airdrop(), FnAirdropERC20)
	require.NoError(t, err)
	assert.Equal(t, Selector(sig), sel)

	_, _, err = MethodSelector(Airdrop(), "nope")
	assert.Error(t, err)
}

func TestParseABIInvalid(t *testing.T) {
	_, err := ParseABI([]byte(`{not json`))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Reader
// ---------------------------------------------------------------------------

func TestReadContractBalanceOf(t *testing.T) {
	encoded, err := ERC20().Methods[FnBalanceOf].Outputs.Pack(big.NewInt(100))
	require.NoError(t, err)
	backend := &fakeCaller{result: encoded}

	out, err := NewReader(backend).ReadContract(context.Background(), tokenAddr, ERC20(), FnBalanceOf, ownerAddr)
	require.NoError(t, err)
	require.Len(t, out, 1)
	got, ok := out[0].(*big.Int)
	require.True(t, ok)
	assert.Equal(t, int64(100), got.Int64())

	assert.Equal(t, tokenAddr, backend.to)
	want, err := ERC20().Pack(FnBalanceOf, ownerAddr)
	require.NoError(t, err)
	assert.Equal(t, want, backend.data)
}

func TestReadContractString(t *testing.T) {
	encoded, err := ERC20().Methods[FnSymbol].Outputs.Pack("DROP")
	require.NoError(t, err)

	out, err := NewReader(&fakeCaller{result: encoded}).ReadContract(context.Background(), tokenAddr, ERC20(), FnSymbol)
	require.NoError(t, err)
	assert.Equal(t, "DROP", out[0])
}

func TestReadContractRejectsWriteFunction(t *testing.T) {
	_, err := NewReader(&fakeCaller{}).ReadContract(context.Background(), tokenAddr, ERC20(), FnApprove, spenderAddr, big.NewInt(1))
	assert.ErrorContains(t, err, "not a read function")
}

func TestReadContractUnknownFunction(t *testing.T) {
	_, err := NewReader(&fakeCaller{}).ReadContract(context.Background(), tokenAddr, ERC20(), "mint")
	assert.ErrorContains(t, err, "not found")
}

func TestReadContractBadArgs(t *testing.T) {
	_, err := NewReader(&fakeCaller{}).ReadContract(context.Background(), tokenAddr, ERC20(), FnBalanceOf, "not-an-address")
	assert.ErrorContains(t, err, "encoding call")
}

func TestReadContractEmptyResult(t *testing.T) {
	_, err := NewReader(&fakeCaller{result: nil}).ReadContract(context.Background(), tokenAddr, ERC20(), FnDecimals)
	assert.ErrorContains(t, err, "returned no data")
}

func TestReadContractBackendError(t *testing.T) {
	backend := &fakeCaller{err: errors.New("connection refused")}
	_, err := NewReader(backend).ReadContract(context.Background(), tokenAddr, ERC20(), FnDecimals)
	assert.ErrorContains(t, err, "connection refused")
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

func TestWriteContractBuildsDynamicFeeTx(t *testing.T) {
	backend := &fakeTxBackend{}
	signer := &fakeSigner{}
	w := NewWriter(backend, signer, 31337)

	hash, err := w.WriteContract(context.Background(), tokenAddr, ERC20(), FnApprove, spenderAddr, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xabc"), hash)
	assert.Equal(t, []byte("signed"), backend.sent)
	assert.Equal(t, []string{"estimate", "gasPrice", "nonce", "send"}, backend.calls)

	tx := signer.tx
	require.NotNil(t, tx)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, int64(31337), tx.ChainId().Int64())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(55_000), tx.Gas())
	assert.Equal(t, tokenAddr, *tx.To())
	assert.Equal(t, int64(2_000_000_000), tx.GasFeeCap().Int64())
	assert.Zero(t, tx.Value().Sign())

	want, err := ERC20().Pack(FnApprove, spenderAddr, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestWriteContractFallsBackOnEstimateFailure(t *testing.T) {
	backend := &fakeTxBackend{estimateErr: errors.New("method not supported")}
	signer := &fakeSigner{}

	_, err := NewWriter(backend, signer, 1).WriteContract(context.Background(), tokenAddr, ERC20(), FnApprove, spenderAddr, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, config.GasLimitContractCall, signer.tx.Gas())
}

func TestWriteContractCustomFallbackGas(t *testing.T) {
	backend := &fakeTxBackend{estimateErr: errors.New("timeout")}
	signer := &fakeSigner{}

	_, err := NewWriter(backend, signer, 1, WithFallbackGas(400_000)).
		WriteContract(context.Background(), tokenAddr, ERC20(), FnApprove, spenderAddr, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), signer.tx.Gas())
}

func TestWriteContractRevertingEstimateStops(t *testing.T) {
	backend := &fakeTxBackend{estimateErr: &chain.RPCError{Code: 3, Message: "execution reverted: insufficient allowance"}}

	_, err := NewWriter(backend, &fakeSigner{}, 1).WriteContract(context.Background(), tokenAddr, ERC20(), FnApprove, spenderAddr, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimating gas")
	assert.NotContains(t, backend.calls, "send")
}

func TestWriteContractBroadcastError(t *testing.T) {
	backend := &fakeTxBackend{sendErr: errors.New("nonce too low")}
	_, err := NewWriter(backend, &fakeSigner{}, 1).WriteContract(context.Background(), tokenAddr, ERC20(), FnApprove, spenderAddr, big.NewInt(1))
	assert.ErrorContains(t, err, "broadcasting transaction")
}

func TestWriteContractRejectsReadFunction(t *testing.T) {
	backend := &fakeTxBackend{}
	_, err := NewWriter(backend, &fakeSigner{}, 1).WriteContract(context.Background(), tokenAddr, ERC20(), FnBalanceOf, ownerAddr)
	assert.ErrorContains(t, err, "not a write function")
	assert.Empty(t, backend.calls)
}

func TestWriterFrom(t *testing.T) {
	assert.Equal(t, ownerAddr, NewWriter(&fakeTxBackend{}, &fakeSigner{}, 1).From())
}

// ---------------------------------------------------------------------------
// Waiter
// ---------------------------------------------------------------------------

type fakeReceipts struct {
	timeout time.Duration
}

func (f *fakeReceipts) WaitForReceipt(_ context.Context, hash common.Hash, timeout time.Duration) (*chain.TxReceipt, error) {
	f.timeout = timeout
	return &chain.TxReceipt{Hash: hash, Status: 1}, nil
}

func TestWaiterDefaultsTimeout(t *testing.T) {
	backend := &fakeReceipts{}
	r, err := NewWaiter(backend, 0).WaitForReceipt(context.Background(), common.HexToHash("0x1"))
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, config.TxConfirmTimeout, backend.timeout)
}

func TestWaiterCustomTimeout(t *testing.T) {
	backend := &fakeReceipts{}
	_, err := NewWaiter(backend, 5*time.Second).WaitForReceipt(context.Background(), common.HexToHash("0x1"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, backend.timeout)
}
