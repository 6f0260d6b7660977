package wallet

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// DefaultEnvVar holds the base58 encoded secret key
const DefaultEnvVar = "WALLET_PRIVATE_KEY"

// Wallet is the signing identity of a single pipeline run
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// FromBase58 decodes a base58 secret key
func FromBase58(secret string) (*Wallet, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("private key is empty")
	}

	privateKey, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if len(privateKey) != 64 {
		return nil, fmt.Errorf("invalid private key: expected 64 bytes, got %d", len(privateKey))
	}

	return &Wallet{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// Load reads the secret key from envVar
func Load(envVar string) (*Wallet, error) {
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	secret := os.Getenv(envVar)
	if secret == "" {
		return nil, fmt.Errorf("%s not set", envVar)
	}
	return FromBase58(secret)
}

// PublicKey returns the wallet address
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// Sign fills the signature slots of tx. The wallet must be the only required
// signer; placeholder signatures from the builder are discarded first.
func (w *Wallet) Sign(tx *solana.Transaction) error {
	tx.Signatures = nil
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}
