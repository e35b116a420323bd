package pancake

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcs-swap/pkg/types"
	"pcs-swap/pkg/wallet"
)

var (
	testBase      = common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")
	testQuote     = common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82")
	testRouter    = common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E")
	testRecipient = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testPair      = common.HexToAddress("0x0eD7e52944161450477ee417DE9Cd3a859b14fD0")
)

func testConfig() *types.TradeConfig {
	return &types.TradeConfig{
		BaseToken:        testBase,
		QuoteToken:       testQuote,
		Router:           testRouter,
		Recipient:        testRecipient,
		Amount:           big.NewInt(1e18),
		Slippage:         20,
		GasPrice:         big.NewInt(5e9),
		GasLimit:         300000,
		WalletMinBalance: big.NewInt(0),
	}
}

func testClient(t *testing.T) *Client {
	t.Helper()
	acct, err := wallet.FromPrivateKey("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	return New(nil, acct, testConfig(), big.NewInt(56), nil)
}

func TestABIs(t *testing.T) {
	for _, method := range []string{"getAmountsOut", "getAmountsIn", "swapExactETHForTokens", "swapExactTokensForETH", "WETH", "factory"} {
		_, ok := routerABI.Methods[method]
		assert.True(t, ok, "router method %s", method)
	}
	_, ok := factoryABI.Methods["getPair"]
	assert.True(t, ok)
	for _, method := range []string{"balanceOf", "decimals", "symbol", "allowance", "approve"} {
		_, ok := erc20ABI.Methods[method]
		assert.True(t, ok, "erc20 method %s", method)
	}
}

func TestGetAmountsOut_RoundTrip(t *testing.T) {
	path := []common.Address{testBase, testQuote}
	data, err := routerABI.Pack("getAmountsOut", big.NewInt(1000), path)
	require.NoError(t, err)
	assert.Equal(t, routerABI.Methods["getAmountsOut"].ID, data[:4])

	encoded, err := routerABI.Methods["getAmountsOut"].Outputs.Pack([]*big.Int{big.NewInt(1000), big.NewInt(95)})
	require.NoError(t, err)

	out, err := routerABI.Unpack("getAmountsOut", encoded)
	require.NoError(t, err)
	amounts, ok := out[0].([]*big.Int)
	require.True(t, ok)
	require.Len(t, amounts, 2)
	assert.Equal(t, int64(95), amounts[1].Int64())
}

func TestSwapCall_Buy(t *testing.T) {
	c := testClient(t)
	deadline := time.Unix(1700000300, 0)
	q := &types.SwapQuote{
		Side:     types.SideBuy,
		AmountIn: big.NewInt(1e18),
		Expected: big.NewInt(100),
		Limit:    big.NewInt(95),
		Slippage: 20,
		Path:     c.cfg.SwapPath(types.SideBuy),
	}

	method, params, value := c.swapCall(q, deadline)
	assert.Equal(t, "swapExactETHForTokens", method)
	require.Len(t, params, 4)
	assert.Equal(t, big.NewInt(95), params[0])
	assert.Equal(t, []common.Address{testBase, testQuote}, params[1])
	assert.Equal(t, testRecipient, params[2])
	assert.Equal(t, big.NewInt(1700000300), params[3])
	assert.Equal(t, big.NewInt(1e18), value)

	_, err := routerABI.Pack(method, params...)
	assert.NoError(t, err)
}

func TestSwapCall_Sell(t *testing.T) {
	c := testClient(t)
	q := &types.SwapQuote{
		Side:     types.SideSell,
		AmountIn: big.NewInt(500),
		Expected: big.NewInt(100),
		Limit:    big.NewInt(105),
		Slippage: 20,
		Path:     c.cfg.SwapPath(types.SideSell),
	}

	method, params, value := c.swapCall(q, time.Now().Add(types.SwapDeadline))
	assert.Equal(t, "swapExactTokensForETH", method)
	require.Len(t, params, 5)
	assert.Equal(t, big.NewInt(500), params[0])
	assert.Equal(t, big.NewInt(95), params[1])
	assert.Equal(t, []common.Address{testQuote, testBase}, params[2])
	assert.Nil(t, value)

	_, err := routerABI.Pack(method, params...)
	assert.NoError(t, err)
}

func TestSettle_Buy(t *testing.T) {
	c := testClient(t)
	q := &types.SwapQuote{Side: types.SideBuy, AmountIn: big.NewInt(1e18), Limit: big.NewInt(0)}
	receipt := &ethtypes.Receipt{
		Status:      ethtypes.ReceiptStatusSuccessful,
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: big.NewInt(123),
		GasUsed:     150000,
		Logs: []*ethtypes.Log{
			transferLog(testBase, testRouter, testPair, big.NewInt(1e18)),
			transferLog(testQuote, testPair, testRecipient, big.NewInt(4200)),
		},
	}

	result, err := c.settle(q, receipt)
	require.NoError(t, err)
	assert.Equal(t, types.SideBuy, result.Side)
	assert.Equal(t, big.NewInt(4200), result.AmountOut)
	assert.Equal(t, big.NewInt(1e18), result.AmountIn)
	assert.Equal(t, uint64(123), result.BlockNumber)
	assert.Equal(t, uint64(150000), result.GasUsed)
	assert.Equal(t, receipt.TxHash, result.TxHash)
}

func TestSettle_Sell(t *testing.T) {
	c := testClient(t)
	q := &types.SwapQuote{Side: types.SideSell, AmountIn: big.NewInt(4200), Limit: big.NewInt(0)}
	receipt := &ethtypes.Receipt{
		Status: ethtypes.ReceiptStatusSuccessful,
		Logs: []*ethtypes.Log{
			transferLog(testQuote, testRecipient, testPair, big.NewInt(4200)),
			transferLog(testBase, testPair, testRouter, big.NewInt(9e17)),
		},
	}

	result, err := c.settle(q, receipt)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(9e17), result.AmountOut)
}

func TestSettle_Reverted(t *testing.T) {
	c := testClient(t)
	q := &types.SwapQuote{Side: types.SideBuy, AmountIn: big.NewInt(1), Limit: big.NewInt(0)}

	_, err := c.settle(q, &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSubmission)
}

func TestSettle_NoTransfer(t *testing.T) {
	c := testClient(t)
	q := &types.SwapQuote{Side: types.SideSell, AmountIn: big.NewInt(1), Limit: big.NewInt(0)}

	_, err := c.settle(q, &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfirmation)
}

func TestPairInfo_HasLiquidity(t *testing.T) {
	info := &PairInfo{BaseReserve: big.NewInt(10)}
	assert.True(t, info.HasLiquidity(nil))
	assert.True(t, info.HasLiquidity(big.NewInt(10)))
	assert.False(t, info.HasLiquidity(big.NewInt(11)))
	assert.False(t, (&PairInfo{}).HasLiquidity(big.NewInt(1)))
}
