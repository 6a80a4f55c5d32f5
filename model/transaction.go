package model

// CoinbaseSender is the reserved sender address of the mining reward
// transaction. It has no keypair and its transactions carry no signature.
const CoinbaseSender = "COINBASE"

// MaxMessageLen bounds the optional free-text message on a transaction.
const MaxMessageLen = 256

type Transaction struct {
	// Hash of this transaction in the hex string format. We use this to
	// uniquely identify the transaction.
	Hash string
	// Address of the sender.
	Sender string
	// Address of the recipient.
	Recipient string
	// Amount transferred, in the smallest unit.
	Amount uint64
	// Fee paid to the miner, in the smallest unit.
	Fee uint64
	// Optional free-text message, at most MaxMessageLen bytes.
	Message string
	// Unix timestamp at creation time.
	Timestamp int64
	// Compressed public key of the sender, empty for coinbase. The sender
	// address must be derivable from it, so swapping the key out
	// invalidates the transaction.
	PublicKey []byte
	// DER encoded signature over the canonical transaction bytes. Empty
	// for coinbase.
	Signature []byte
}

// IsCoinbase reports whether this is a mining reward transaction.
func (t *Transaction) IsCoinbase() bool {
	return t.Sender == CoinbaseSender
}

// TransactionPool contains all pending transactions that haven't been
// sealed into a block yet. Key is the hex of the transaction's hash.
// Insertion order is preserved so that block assembly is deterministic.
// The pool itself is not goroutine safe, the full node serializes access.
type TransactionPool struct {
	txs   map[string]*Transaction
	order []string
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() *TransactionPool {
	return &TransactionPool{
		txs: make(map[string]*Transaction),
	}
}

// Contains reports whether a transaction with the given hash is pending.
func (p *TransactionPool) Contains(hash string) bool {
	_, exist := p.txs[hash]
	return exist
}

// Add puts a transaction into the pool. Returns ErrDuplicateTransaction if
// the hash is already present. Signature and balance checks are the
// caller's job.
func (p *TransactionPool) Add(tx *Transaction) error {
	if _, exist := p.txs[tx.Hash]; exist {
		return ErrDuplicateTransaction
	}
	p.txs[tx.Hash] = tx
	p.order = append(p.order, tx.Hash)
	return nil
}

// Get returns the pending transaction with the given hash, or nil.
func (p *TransactionPool) Get(hash string) *Transaction {
	return p.txs[hash]
}

// Pending returns the pending transactions in insertion order. The returned
// slice is a fresh copy, iterating it never mutates the pool.
func (p *TransactionPool) Pending() []*Transaction {
	txs := make([]*Transaction, 0, len(p.order))
	for _, hash := range p.order {
		txs = append(txs, p.txs[hash])
	}
	return txs
}

// Drain removes the confirmed transactions from the pool after a block has
// been accepted. Unconfirmed entries stay pending for the next block.
func (p *TransactionPool) Drain(confirmedHashes []string) {
	confirmed := make(map[string]bool, len(confirmedHashes))
	for _, hash := range confirmedHashes {
		confirmed[hash] = true
		delete(p.txs, hash)
	}
	remaining := p.order[:0]
	for _, hash := range p.order {
		if !confirmed[hash] {
			remaining = append(remaining, hash)
		}
	}
	p.order = remaining
}

// Size returns the number of pending transactions.
func (p *TransactionPool) Size() int {
	return len(p.order)
}
