package pancake

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// TxInfo summarizes a transaction and, once mined, its receipt
type TxInfo struct {
	Hash        common.Hash     `json:"hash"`
	Nonce       uint64          `json:"nonce"`
	To          *common.Address `json:"to,omitempty"`
	Value       *big.Int        `json:"value"`
	GasPrice    *big.Int        `json:"gas_price"`
	GasLimit    uint64          `json:"gas_limit"`
	Pending     bool            `json:"pending"`
	Mined       bool            `json:"mined"`
	BlockNumber uint64          `json:"block_number,omitempty"`
	GasUsed     uint64          `json:"gas_used,omitempty"`
	Success     bool            `json:"success"`

	// Transfers of the configured tokens to the configured recipient and router
	QuoteReceived *big.Int `json:"quote_received,omitempty"`
	BaseReceived  *big.Int `json:"base_received,omitempty"`
}

// TransactionInfo retrieves a transaction and its receipt if it has been mined
func (c *Client) TransactionInfo(ctx context.Context, hash common.Hash) (*TxInfo, error) {
	tx, isPending, err := c.backend.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	info := &TxInfo{
		Hash:     tx.Hash(),
		Nonce:    tx.Nonce(),
		To:       tx.To(),
		Value:    tx.Value(),
		GasPrice: tx.GasPrice(),
		GasLimit: tx.Gas(),
		Pending:  isPending,
	}
	if isPending {
		return info, nil
	}

	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return info, nil
		}
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	info.Mined = true
	if receipt.BlockNumber != nil {
		info.BlockNumber = receipt.BlockNumber.Uint64()
	}
	info.GasUsed = receipt.GasUsed
	info.Success = receipt.Status == 1
	info.QuoteReceived = TransferredTo(receipt, c.cfg.QuoteToken, c.cfg.Recipient)
	info.BaseReceived = TransferredTo(receipt, c.cfg.BaseToken, c.cfg.Router)

	return info, nil
}
