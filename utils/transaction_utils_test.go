package utils

import (
	"math"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pocketcoin/pocketcoin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAccount struct {
	priv    *secp256k1.PrivateKey
	pub     []byte
	address string
}

func newTestAccount(t *testing.T) testAccount {
	t.Helper()
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)
	pubBytes := PublicKeyToBytes(pub)
	return testAccount{
		priv:    priv,
		pub:     pubBytes,
		address: CreateAddress(pubBytes),
	}
}

func newSignedTransaction(t *testing.T, from testAccount, to string, amount uint64, fee uint64, message string) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{
		Sender:    from.address,
		Recipient: to,
		Amount:    amount,
		Fee:       fee,
		Message:   message,
		Timestamp: 1700000100,
		PublicKey: from.pub,
	}
	tx.Signature = Sign(GetTransactionDataBytes(tx), from.priv)
	tx.Hash = HashTransaction(tx)
	return tx
}

func TestHashTransactionStable(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)
	tx := newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	assert.Equal(t, tx.Hash, HashTransaction(tx))

	// Distinct logical transactions get distinct hashes.
	other := newSignedTransaction(t, from, to.address, 43, 1, "lunch")
	assert.NotEqual(t, tx.Hash, other.Hash)
}

func TestVerifyTransaction(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)
	tx := newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	assert.NoError(t, VerifyTransaction(tx))
}

func TestVerifyTransactionTamperedFields(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)
	other := newTestAccount(t)

	// Mutating any field after signing makes verification fail.
	tx := newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	tx.Amount = 43
	assert.Error(t, VerifyTransaction(tx))

	tx = newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	tx.Recipient = other.address
	assert.Error(t, VerifyTransaction(tx))

	tx = newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	tx.Fee = 0
	assert.Error(t, VerifyTransaction(tx))

	tx = newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	tx.Message = "dinner"
	assert.Error(t, VerifyTransaction(tx))

	tx = newSignedTransaction(t, from, to.address, 42, 1, "lunch")
	tx.Timestamp++
	assert.Error(t, VerifyTransaction(tx))
}

func TestVerifyTransactionTamperedSignature(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)

	tx := newSignedTransaction(t, from, to.address, 42, 1, "")
	tx.Signature = append([]byte{}, tx.Signature...)
	tx.Signature[len(tx.Signature)-1] ^= 0xff
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidSignature)
}

func TestVerifyTransactionSwappedPublicKey(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)
	impostor := newTestAccount(t)

	// Carrying someone else's key no longer matches the sender address.
	tx := newSignedTransaction(t, from, to.address, 42, 1, "")
	tx.PublicKey = impostor.pub
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidSignature)
}

func TestVerifyTransactionMismatchedHash(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)

	tx := newSignedTransaction(t, from, to.address, 42, 1, "")
	tx.Hash = HashTransaction(&model.Transaction{Sender: tx.Sender})
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidSignature)
}

func TestVerifyTransactionRejectsBadFields(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)

	tx := newSignedTransaction(t, from, to.address, 1, 0, "")
	tx.Amount = 0
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidAmount)

	// Sender and recipient must differ.
	self := &model.Transaction{
		Sender:    from.address,
		Recipient: from.address,
		Amount:    1,
		Timestamp: 1700000100,
		PublicKey: from.pub,
	}
	self.Signature = Sign(GetTransactionDataBytes(self), from.priv)
	self.Hash = HashTransaction(self)
	assert.ErrorIs(t, VerifyTransaction(self), model.ErrInvalidAddress)

	// Malformed recipient address.
	bad := newSignedTransaction(t, from, "garbage-address", 1, 0, "")
	assert.ErrorIs(t, VerifyTransaction(bad), model.ErrInvalidAddress)
}

func TestCoinbaseTransaction(t *testing.T) {
	miner := newTestAccount(t)
	tx := NewCoinbaseTransaction(miner.address, 11, 1700000100)
	assert.True(t, tx.IsCoinbase())
	assert.NoError(t, VerifyTransaction(tx))

	// A signed coinbase is malformed.
	tx.Signature = []byte{1}
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidSignature)
}

func TestVerifyTransactionRejectsWrappingCost(t *testing.T) {
	from := newTestAccount(t)
	to := newTestAccount(t)

	// Amount plus fee wraps uint64, the "cost" would come out as zero.
	tx := newSignedTransaction(t, from, to.address, math.MaxUint64, 1, "")
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidAmount)

	// Still within uint64 but past the signed accounting range.
	tx = newSignedTransaction(t, from, to.address, math.MaxInt64, 1, "")
	assert.ErrorIs(t, VerifyTransaction(tx), model.ErrInvalidAmount)

	// The boundary itself is fine.
	tx = newSignedTransaction(t, from, to.address, math.MaxInt64-1, 1, "")
	assert.NoError(t, VerifyTransaction(tx))
}
