package pancake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

var erc20TransferTopic = erc20ABI.Events["Transfer"].ID

// TransferredTo sums the ERC20 Transfer amounts of token received by to within a receipt.
//
// A buy is settled by the pair transferring the quote token to the recipient; a sell
// by the pair transferring the wrapped base token to the router, which unwraps it and
// pays the native coin. Both show up as plain Transfer logs of the counter asset.
func TransferredTo(receipt *ethtypes.Receipt, token, to common.Address) *big.Int {
	total := new(big.Int)
	if receipt == nil {
		return total
	}

	for _, lg := range receipt.Logs {
		if lg == nil || lg.Address != token {
			continue
		}
		if len(lg.Topics) != 3 || lg.Topics[0] != erc20TransferTopic {
			continue
		}
		if common.BytesToAddress(lg.Topics[2].Bytes()) != to {
			continue
		}
		total.Add(total, new(big.Int).SetBytes(lg.Data))
	}

	return total
}
