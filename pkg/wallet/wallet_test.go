package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	account := solana.NewWallet()
	t.Setenv("TEST_WALLET_KEY", account.PrivateKey.String())

	w, err := Load("TEST_WALLET_KEY")
	require.NoError(t, err)
	assert.True(t, w.PublicKey().Equals(account.PublicKey()))
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("TEST_WALLET_KEY", "")
	_, err := Load("TEST_WALLET_KEY")
	assert.Error(t, err)
}

func TestFromBase58Invalid(t *testing.T) {
	_, err := FromBase58("not-base58-0OIl")
	assert.Error(t, err)

	_, err = FromBase58("   ")
	assert.Error(t, err)
}

func TestSign(t *testing.T) {
	account := solana.NewWallet()
	w, err := FromBase58(account.PrivateKey.String())
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1000, w.PublicKey(), solana.NewWallet().PublicKey()).Build()},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, w.Sign(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NotEqual(t, solana.Signature{}, tx.Signatures[0])
}
