package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// BetMessage builds the canonical text a bettor signs when placing a bet.
// The same text must be reproduced to verify the signature later.
func BetMessage(userID, marketID string, amount float64, side domain.BetSide, ts time.Time) string {
	return fmt.Sprintf("sonicbet: %s bets %s S on %s for market %s at %d",
		userID, strconv.FormatFloat(amount, 'f', -1, 64), side, marketID, ts.Unix())
}

// SignMessage signs message with the Ethereum prefixed-hash scheme
// ("\x19Ethereum Signed Message:\n"), matching what MetaMask's personal_sign
// produces. The returned signature is 0x-prefixed hex with V in {27, 28}.
func SignMessage(key *ecdsa.PrivateKey, message string) (string, error) {
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("wallet: sign message: %w", err)
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// VerifySignature reports whether sigHex is a valid prefixed-hash signature
// of message by the given address.
func VerifySignature(address, message, sigHex string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("wallet: verify for %q: %w", address, domain.ErrInvalidAddress)
	}

	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return false, fmt.Errorf("wallet: decode signature: %w", err)
	}
	if len(sig) != ethcrypto.SignatureLength {
		return false, fmt.Errorf("wallet: signature must be %d bytes, got %d",
			ethcrypto.SignatureLength, len(sig))
	}

	// Normalize V back to {0, 1} for recovery.
	norm := make([]byte, len(sig))
	copy(norm, sig)
	if norm[64] >= 27 {
		norm[64] -= 27
	}

	pub, err := ethcrypto.SigToPub(accounts.TextHash([]byte(message)), norm)
	if err != nil {
		return false, fmt.Errorf("wallet: recover signer: %w", err)
	}

	return ethcrypto.PubkeyToAddress(*pub) == common.HexToAddress(address), nil
}
