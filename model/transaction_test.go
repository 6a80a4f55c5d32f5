package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoolTransaction(hash string) *Transaction {
	return &Transaction{
		Hash:      hash,
		Sender:    "sender",
		Recipient: "recipient",
		Amount:    1,
	}
}

func TestPoolAddAndDuplicate(t *testing.T) {
	pool := NewTransactionPool()
	tx := newPoolTransaction("aa")
	require.NoError(t, pool.Add(tx))
	assert.True(t, pool.Contains("aa"))
	assert.Equal(t, tx, pool.Get("aa"))

	assert.ErrorIs(t, pool.Add(newPoolTransaction("aa")), ErrDuplicateTransaction)
	assert.Equal(t, 1, pool.Size())
}

func TestPoolPendingPreservesInsertionOrder(t *testing.T) {
	pool := NewTransactionPool()
	hashes := []string{"cc", "aa", "bb"}
	for _, h := range hashes {
		require.NoError(t, pool.Add(newPoolTransaction(h)))
	}

	pending := pool.Pending()
	require.Len(t, pending, 3)
	for i, h := range hashes {
		assert.Equal(t, h, pending[i].Hash)
	}

	// Restartable: iterating a snapshot never mutates the pool.
	again := pool.Pending()
	require.Len(t, again, 3)
	assert.Equal(t, pending, again)
	assert.Equal(t, 3, pool.Size())
}

func TestPoolDrain(t *testing.T) {
	pool := NewTransactionPool()
	for _, h := range []string{"aa", "bb", "cc"} {
		require.NoError(t, pool.Add(newPoolTransaction(h)))
	}

	pool.Drain([]string{"aa", "cc", "not-present"})
	assert.Equal(t, 1, pool.Size())
	assert.False(t, pool.Contains("aa"))
	assert.True(t, pool.Contains("bb"))

	pending := pool.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "bb", pending[0].Hash)
}
