// Package wallet talks to the Sonic chain over JSON-RPC: it reads balances,
// submits treasury payments for placed bets, and signs/verifies bet messages.
// The ledger treats everything returned here as opaque strings.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// transferGasLimit is the fixed gas cost of a plain value transfer.
const transferGasLimit = 21000

// ClientConfig holds the chain parameters for the wallet client.
type ClientConfig struct {
	RPCURL          string
	ChainID         int64
	TreasuryAddress string
}

// Client is a Sonic JSON-RPC client bound to one signing key.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	treasury common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	logger   *slog.Logger
}

// New dials the RPC endpoint, verifies the reported chain id against the
// configured one, and returns a Client that pays the treasury from key.
func New(ctx context.Context, cfg ClientConfig, key *ecdsa.PrivateKey, logger *slog.Logger) (*Client, error) {
	if !common.IsHexAddress(cfg.TreasuryAddress) {
		return nil, fmt.Errorf("wallet: treasury %q: %w", cfg.TreasuryAddress, domain.ErrInvalidAddress)
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("wallet: dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("wallet: chain id: %w", err)
	}
	if chainID.Cmp(big.NewInt(cfg.ChainID)) != 0 {
		eth.Close()
		return nil, fmt.Errorf("wallet: %w: node reports chain %s, want %d",
			domain.ErrWrongNetwork, chainID, cfg.ChainID)
	}

	return &Client{
		eth:      eth,
		chainID:  chainID,
		treasury: common.HexToAddress(cfg.TreasuryAddress),
		key:      key,
		from:     ethcrypto.PubkeyToAddress(key.PublicKey),
		logger:   logger.With(slog.String("component", "wallet")),
	}, nil
}

// Address returns the hex address of the signing key.
func (c *Client) Address() string {
	return c.from.Hex()
}

// Balance returns the native-token balance of an address in S.
func (c *Client) Balance(ctx context.Context, address string) (float64, error) {
	if !common.IsHexAddress(address) {
		return 0, fmt.Errorf("wallet: balance of %q: %w", address, domain.ErrInvalidAddress)
	}
	wei, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, fmt.Errorf("wallet: balance of %s: %w", address, err)
	}
	return WeiToToken(wei), nil
}

// PayTreasury transfers amount S to the treasury address and returns the
// transaction hash. The caller stores the hash on the bet; nobody waits for
// confirmation.
func (c *Client) PayTreasury(ctx context.Context, amount float64) (string, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("wallet: pending nonce: %w", err)
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("wallet: suggest gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, c.treasury, TokenToWei(amount), transferGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.key)
	if err != nil {
		return "", fmt.Errorf("wallet: sign treasury payment: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("wallet: send treasury payment: %w",
			errors.Join(domain.ErrPaymentFailed, err))
	}

	hash := signed.Hash().Hex()
	c.logger.InfoContext(ctx, "treasury payment submitted",
		slog.Float64("amount", amount),
		slog.String("tx_hash", hash),
	)
	return hash, nil
}

// SignText signs an arbitrary message with the operator key using the
// prefixed-hash scheme. See SignMessage.
func (c *Client) SignText(message string) (string, error) {
	return SignMessage(c.key, message)
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
