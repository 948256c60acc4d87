package wallet

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	keyHex := hex.EncodeToString(ethcrypto.FromECDSA(key))

	blob, err := EncryptKey(keyHex, "hunter2")
	require.NoError(err)

	got, err := DecryptKey(blob, "hunter2")
	require.NoError(err)
	require.Equal(keyHex, got)
}

func TestDecryptWrongPassword(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)

	blob, err := EncryptKey(hex.EncodeToString(ethcrypto.FromECDSA(key)), "right")
	require.NoError(err)

	_, err = DecryptKey(blob, "wrong")
	require.Error(err)
}

func TestEncryptRejectsBadKey(t *testing.T) {
	require := require.New(t)

	_, err := EncryptKey("zzzz", "pw")
	require.Error(err)

	_, err = EncryptKey("deadbeef", "pw")
	require.Error(err)

	_, err = EncryptKey(hex.EncodeToString(make([]byte, 32)), "")
	require.Error(err)
}

func TestLoadKeyFromEncryptedFile(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	keyHex := hex.EncodeToString(ethcrypto.FromECDSA(key))

	blob, err := EncryptKey(keyHex, "pw")
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "operator.json")
	require.NoError(os.WriteFile(path, blob, 0o600))

	loaded, err := LoadKey(KeyConfig{EncryptedKeyPath: path, KeyPassword: "pw"})
	require.NoError(err)
	require.Equal(key.D, loaded.D)
}

func TestLoadKeyRawTakesPrecedence(t *testing.T) {
	require := require.New(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(err)
	keyHex := hex.EncodeToString(ethcrypto.FromECDSA(key))

	loaded, err := LoadKey(KeyConfig{RawPrivateKey: "0x" + keyHex, EncryptedKeyPath: "/does/not/exist"})
	require.NoError(err)
	require.Equal(key.D, loaded.D)
}

func TestLoadKeyNoSource(t *testing.T) {
	_, err := LoadKey(KeyConfig{})
	require.Error(t, err)
}
