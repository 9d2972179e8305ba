package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/mr-tron/base58"
)

// GenerateKeyPair creates a new hex-encoded Ed25519 keypair.
func GenerateKeyPair() (publicKeyHex, privateKeyHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv), nil
}

// HashData creates a SHA256 hash of the input data
func HashData(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Address derives the base58 ledger address for a hex-encoded public key.
func Address(publicKeyHex string) (string, error) {
	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return "", errors.New("invalid public key format")
	}
	return base58.Encode(publicKey), nil
}
