package wallet

import (
	"math/big"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/sonicbet/sonicbet/internal/domain"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	addr := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := BetMessage("0xAlice", "sonic-price-1usd", 12.5, domain.BetSideYes,
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	sig, err := SignMessage(key, msg)
	require.NoError(err)
	require.True(len(sig) > 2 && sig[:2] == "0x")

	ok, err := VerifySignature(addr, msg, sig)
	require.NoError(err)
	require.True(ok)
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	other, err := ethcrypto.GenerateKey()
	require.NoError(err)

	msg := BetMessage("0xBob", "sonic-tvl-500m", 3, domain.BetSideNo, time.Now())
	sig, err := SignMessage(key, msg)
	require.NoError(err)

	ok, err := VerifySignature(ethcrypto.PubkeyToAddress(other.PublicKey).Hex(), msg, sig)
	require.NoError(err)
	require.False(ok)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	addr := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	sig, err := SignMessage(key, "original message")
	require.NoError(err)

	ok, err := VerifySignature(addr, "tampered message", sig)
	require.NoError(err)
	require.False(ok)
}

func TestVerifyRejectsBadInputs(t *testing.T) {
	require := require.New(t)

	_, err := VerifySignature("not-an-address", "msg", "0x00")
	require.ErrorIs(err, domain.ErrInvalidAddress)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	addr := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	_, err = VerifySignature(addr, "msg", "not-hex")
	require.Error(err)

	_, err = VerifySignature(addr, "msg", "0xdeadbeef")
	require.Error(err)
}

func TestTokenWeiConversion(t *testing.T) {
	require := require.New(t)

	wei := TokenToWei(1.5)
	require.Equal(0, wei.Cmp(big.NewInt(1_500_000_000_000_000_000)))

	require.InDelta(1.5, WeiToToken(wei), 1e-12)
	require.Equal(0.0, WeiToToken(big.NewInt(0)))
}
