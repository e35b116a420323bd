package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// DefaultDerivationPath is the first account of the standard Ethereum BIP-44 path
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// Account is a signing key and its address
type Account struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

// FromMnemonic derives the account at derivationPath from a BIP-39 mnemonic
func FromMnemonic(mnemonic, derivationPath string) (*Account, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	derivationPath = strings.TrimSpace(derivationPath)
	if mnemonic == "" {
		return nil, fmt.Errorf("mnemonic is required")
	}
	if derivationPath == "" {
		derivationPath = DefaultDerivationPath
	}

	w, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	path, err := hdwallet.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path: %w", err)
	}

	acct, err := w.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	key, err := w.PrivateKey(acct)
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}

	return &Account{
		Address:    acct.Address,
		PrivateKey: key,
	}, nil
}

// FromPrivateKey parses a hex encoded private key, with or without 0x prefix
func FromPrivateKey(hexKey string) (*Account, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, nil
}
