package full_node

import (
	"math/bits"
	"sort"
	"sync"

	"github.com/jinzhu/copier"
	uuid "github.com/satori/go.uuid"

	"github.com/pocketcoin/pocketcoin/commands"
	"github.com/pocketcoin/pocketcoin/config"
	"github.com/pocketcoin/pocketcoin/model"
	"github.com/pocketcoin/pocketcoin/utils"
)

// A full node maintains the chain and the pending transaction pool.
// A single RWMutex serializes pool mutation, candidate assembly reads and
// chain appends, so no two candidates referencing the same tip race to
// extend the chain. Mining itself runs without the lock held.
type FullNode struct {
	// The blockchain it needs to maintain.
	chain *model.Chain
	// Incoming transactions are added to this pool.
	txPool *model.TransactionPool
	// Address the coinbase reward is paid to.
	minerAddress string
	// Engine config.
	config config.AppConfig
	// A single mutex for changing internal state.
	m sync.RWMutex
	// A unique identifier of this node. Doesn't impact validation, only
	// used for logging and debugging.
	uuid string
}

// NewFullNode creates a brand new full node, which contains a genesis block
// in the chain.
func NewFullNode(c config.AppConfig, minerAddress string) *FullNode {
	return &FullNode{
		chain:        utils.NewChain(),
		txPool:       model.NewTransactionPool(),
		minerAddress: minerAddress,
		config:       c,
		uuid:         uuid.NewV4().String(),
	}
}

// ID returns the node's unique identifier.
func (f *FullNode) ID() string {
	return f.uuid
}

// AddTransactionToPool verifies and accepts a pending transaction.
// Returns ErrInvalidSignature, ErrDuplicateTransaction or
// ErrInsufficientBalance, in which case the pool is unchanged.
//
// Balance sufficiency is checked against the confirmed chain only. A sender
// may hold multiple pending transactions that jointly overspend their
// confirmed balance, settling that is deferred to candidate assembly.
func (f *FullNode) AddTransactionToPool(tx *model.Transaction) error {
	if err := utils.VerifyTransaction(tx); err != nil {
		return err
	}
	if tx.IsCoinbase() {
		// Coinbase is minted during assembly, never submitted.
		return model.ErrInvalidSignature
	}
	f.m.Lock()
	defer f.m.Unlock()
	if f.txPool.Contains(tx.Hash) {
		return model.ErrDuplicateTransaction
	}
	if cost, carry := bits.Add64(tx.Amount, tx.Fee, 0); carry != 0 || cost > utils.Balance(f.chain, tx.Sender) {
		return model.ErrInsufficientBalance
	}
	return f.txPool.Add(tx)
}

// PendingTransactions returns a snapshot of the pool in insertion order.
func (f *FullNode) PendingTransactions() []*model.Transaction {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.txPool.Pending()
}

// Balance folds the confirmed chain for the given address.
func (f *FullNode) Balance(address string) uint64 {
	f.m.RLock()
	defer f.m.RUnlock()
	return utils.Balance(f.chain, address)
}

// Height returns the index of the chain tip.
func (f *FullNode) Height() int64 {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.chain.Height()
}

// Mine assembles a candidate from the pool, searches for a valid nonce and
// appends the mined block. The proof-of-work search holds no lock and polls
// ctl for cooperative cancellation, an interrupting command is returned as
// a non-error outcome with the chain and pool unchanged. On success the
// confirmed transactions are drained from the pool.
func (f *FullNode) Mine(ctl chan commands.Command, progress func(attempts uint64)) (commands.Command, error) {
	f.m.RLock()
	tip := f.chain.Tip()
	candidate, err := utils.AssembleCandidate(
		f.chain, f.txPool.Pending(), f.config.MAX_TXS_PER_BLOCK,
		f.minerAddress, f.config.COINBASE_REWARD, f.config.DIFFICULTY)
	f.m.RUnlock()
	if err != nil {
		return commands.NewDefaultCommand(), err
	}

	// The heavy search runs outside the critical section.
	cmd, mined := utils.Mine(candidate, f.config.DIFFICULTY, ctl, f.config.PROGRESS_INTERVAL, progress)
	if !mined {
		return cmd, nil
	}

	f.m.Lock()
	defer f.m.Unlock()
	if f.chain.Tip().Hash != tip.Hash {
		// The tip moved underneath us (e.g. a snapshot was loaded while
		// searching). The candidate is stale, the caller may retry.
		return commands.Command{Op: commands.RESTART}, nil
	}
	if err := utils.ExtendChain(f.chain, candidate, f.config.COINBASE_REWARD); err != nil {
		return commands.NewDefaultCommand(), err
	}
	confirmed := make([]string, 0, len(candidate.Txs))
	for _, tx := range candidate.Txs {
		confirmed = append(confirmed, tx.Hash)
	}
	f.txPool.Drain(confirmed)
	return cmd, nil
}

// ValidateChain revalidates the whole chain from genesis forward.
func (f *FullNode) ValidateChain() error {
	f.m.RLock()
	defer f.m.RUnlock()
	return utils.IsValidChain(f.chain, f.config.COINBASE_REWARD)
}

// GetChainSnapshot returns a deep copy of the chain.
func (f *FullNode) GetChainSnapshot() *model.Chain {
	f.m.RLock()
	defer f.m.RUnlock()
	c := &model.Chain{}
	copier.CopyWithOption(c, f.chain, copier.Option{DeepCopy: true})
	return c
}

// SaveChain writes the chain snapshot to disk.
func (f *FullNode) SaveChain(path string) error {
	return utils.SaveChainToFile(f.GetChainSnapshot(), path)
}

// LoadChain replaces the chain with a validated snapshot from disk. The
// pool keeps its pending entries, already-confirmed ones are drained.
func (f *FullNode) LoadChain(path string) error {
	c, err := utils.LoadChainFromFile(path, f.config.COINBASE_REWARD)
	if err != nil {
		return err
	}
	f.m.Lock()
	defer f.m.Unlock()
	f.chain = c
	var confirmed []string
	for _, b := range c.Blocks {
		for _, tx := range b.Txs {
			confirmed = append(confirmed, tx.Hash)
		}
	}
	f.txPool.Drain(confirmed)
	return nil
}

// TransactionHistory lists confirmed and pending transactions involving the
// address, most recent first, up to limit (0 means no limit).
func (f *FullNode) TransactionHistory(address string, limit int) []*model.Transaction {
	f.m.RLock()
	defer f.m.RUnlock()
	var txs []*model.Transaction
	for _, b := range f.chain.Blocks {
		for _, tx := range b.Txs {
			if tx.Sender == address || tx.Recipient == address {
				txs = append(txs, tx)
			}
		}
	}
	for _, tx := range f.txPool.Pending() {
		if tx.Sender == address || tx.Recipient == address {
			txs = append(txs, tx)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp > txs[j].Timestamp
	})
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs
}

// SearchTransaction finds a transaction by hash. The second return names
// where it was found: "confirmed", "pending" or "not_found".
func (f *FullNode) SearchTransaction(hash string) (*model.Transaction, string) {
	f.m.RLock()
	defer f.m.RUnlock()
	for _, b := range f.chain.Blocks {
		for _, tx := range b.Txs {
			if tx.Hash == hash {
				return tx, "confirmed"
			}
		}
	}
	if tx := f.txPool.Get(hash); tx != nil {
		return tx, "pending"
	}
	return nil, "not_found"
}

// RecentBlocks returns up to depth blocks from the tip backwards.
func (f *FullNode) RecentBlocks(depth int) []*model.Block {
	f.m.RLock()
	defer f.m.RUnlock()
	if depth <= 0 || depth > len(f.chain.Blocks) {
		depth = len(f.chain.Blocks)
	}
	blocks := make([]*model.Block, 0, depth)
	for i := len(f.chain.Blocks) - 1; i >= len(f.chain.Blocks)-depth; i-- {
		blocks = append(blocks, f.chain.Blocks[i])
	}
	return blocks
}
