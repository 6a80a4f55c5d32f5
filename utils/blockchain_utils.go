package utils

import (
	"math/bits"
	"time"

	"github.com/pocketcoin/pocketcoin/commands"
	"github.com/pocketcoin/pocketcoin/model"
)

// How many nonces to try between cooperative cancellation checks.
const miningBatchSize = 4096

// GenesisBlock builds the fixed genesis block. It has no predecessor and no
// proof-of-work requirement, and hashes identically for every chain.
func GenesisBlock() *model.Block {
	b := &model.Block{
		Index:     0,
		Timestamp: model.GenesisTimestamp,
		PrevHash:  model.GenesisPrevHash,
	}
	b.Hash = HashBlock(b)
	return b
}

// NewChain creates a chain holding only the genesis block.
func NewChain() *model.Chain {
	return &model.Chain{Blocks: []*model.Block{GenesisBlock()}}
}

// GetBlockBytes concatenates the canonical byte representation of the block
// header fields and the hashes of the embedded transactions, in order.
func GetBlockBytes(b *model.Block) []byte {
	var data []byte
	data = append(data, Uint64ToBytes(uint64(b.Index))...)
	data = append(data, Int64ToBytes(b.Timestamp)...)
	data = append(data, StringToBytes(b.PrevHash)...)
	data = append(data, Uint64ToBytes(b.Nonce)...)
	data = append(data, Uint64ToBytes(b.Difficulty)...)
	for _, tx := range b.Txs {
		data = append(data, StringToBytes(tx.Hash)...)
	}
	return data
}

// HashBlock computes the block hash over the canonical block bytes, in hex.
func HashBlock(b *model.Block) string {
	return BytesToHex(SHA256(GetBlockBytes(b)))
}

// ByteHasLeadingZeros reports whether the digest starts with at least the
// given number of zero bits.
func ByteHasLeadingZeros(digest []byte, bits uint64) bool {
	zeroBytes := int(bits / 8)
	zeroBits := int(bits % 8)
	if zeroBytes > len(digest) || (zeroBytes == len(digest) && zeroBits > 0) {
		return false
	}
	for i := 0; i < zeroBytes; i++ {
		if digest[i] != 0 {
			return false
		}
	}
	if zeroBits == 0 {
		return true
	}
	return digest[zeroBytes]>>(8-zeroBits) == 0
}

// MatchDifficulty recomputes the block digest and reports whether it meets
// the difficulty, along with the hex digest.
func MatchDifficulty(b *model.Block, difficulty uint64) (bool, string) {
	digest := SHA256(GetBlockBytes(b))
	return ByteHasLeadingZeros(digest, difficulty), BytesToHex(digest)
}

// Balance folds every confirmed transaction across the whole chain: credit
// the amount to the recipient, debit amount plus fee from the sender. Pure,
// re-derivable at any time from chain contents alone.
func Balance(c *model.Chain, address string) uint64 {
	var balance int64
	for _, b := range c.Blocks {
		for _, tx := range b.Txs {
			if tx.Recipient == address {
				balance += int64(tx.Amount)
			}
			if tx.Sender == address {
				balance -= int64(tx.Amount + tx.Fee)
			}
		}
	}
	if balance < 0 {
		// Cannot happen on a chain built through ExtendChain.
		return 0
	}
	return uint64(balance)
}

// AssembleCandidate selects pending transactions, in pool insertion order,
// into an unmined block on top of the current tip. A transaction whose
// sender's running pending total would exceed their confirmed balance is
// skipped, not fatal, the rest are still considered. The coinbase paying
// the reward plus the collected fees is appended last. Returns
// ErrNoPendingTransactions when nothing usable is pending.
func AssembleCandidate(c *model.Chain, pending []*model.Transaction, maxPerBlock int, minerAddress string, reward uint64, difficulty uint64) (*model.Block, error) {
	var selected []*model.Transaction
	var fees uint64
	balances := make(map[string]uint64)
	spent := make(map[string]uint64)
	for _, tx := range pending {
		if maxPerBlock > 0 && len(selected) >= maxPerBlock {
			break
		}
		if _, ok := balances[tx.Sender]; !ok {
			balances[tx.Sender] = Balance(c, tx.Sender)
		}
		cost, carry := bits.Add64(tx.Amount, tx.Fee, 0)
		total, carry := bits.Add64(spent[tx.Sender], cost, carry)
		if carry != 0 || total > balances[tx.Sender] {
			continue
		}
		spent[tx.Sender] = total
		selected = append(selected, tx)
		fees += tx.Fee
	}
	if len(selected) == 0 {
		return nil, model.ErrNoPendingTransactions
	}
	now := time.Now().Unix()
	tip := c.Tip()
	block := &model.Block{
		Index:      tip.Index + 1,
		Timestamp:  now,
		Txs:        append(selected, NewCoinbaseTransaction(minerAddress, reward+fees, now)),
		PrevHash:   tip.Hash,
		Difficulty: difficulty,
	}
	return block, nil
}

// Mine searches for a nonce whose block digest meets the difficulty. The
// search is CPU bound and unbounded, difficulty is the only throttle. Every
// batch it polls ctl for cooperative cancellation, and it reports attempts
// so far through progress at the given interval. Returns the interrupting
// command and false when cancelled before a solution, cancellation is not
// an error. On success the block hash is filled in and mined is true.
func Mine(b *model.Block, difficulty uint64, ctl chan commands.Command, progressInterval uint64, progress func(attempts uint64)) (cmd commands.Command, mined bool) {
	b.Difficulty = difficulty
	var attempts uint64
	for nonce := uint64(0); ; {
		select {
		case c := <-ctl:
			return c, false
		default:
		}
		for i := 0; i < miningBatchSize; i++ {
			b.Nonce = nonce
			matched, digest := MatchDifficulty(b, difficulty)
			attempts++
			if progress != nil && progressInterval > 0 && attempts%progressInterval == 0 {
				progress(attempts)
			}
			if matched {
				b.Hash = digest
				return commands.NewDefaultCommand(), true
			}
			nonce++
		}
	}
}

// IsValidBlock validates a mined block against its predecessor:
// 1. Index increments by exactly one.
// 2. PrevHash matches the predecessor's hash.
// 3. The stored hash matches the recomputed block contents.
// 4. The hash meets the difficulty recorded on the block.
// 5. Every embedded transaction verifies, with at most one coinbase, last,
//    paying exactly the reward plus the block's fees.
// Returns a *model.ChainValidationError naming the first broken invariant.
func IsValidBlock(b *model.Block, prev *model.Block, reward uint64) error {
	fail := func(invariant string) error {
		return &model.ChainValidationError{Index: b.Index, Invariant: invariant}
	}
	if b.Index != prev.Index+1 {
		return fail(model.InvariantIndex)
	}
	if b.PrevHash != prev.Hash {
		return fail(model.InvariantPrevHash)
	}
	matched, digest := MatchDifficulty(b, b.Difficulty)
	if digest != b.Hash {
		return fail(model.InvariantHash)
	}
	if !matched {
		return fail(model.InvariantDifficulty)
	}
	var fees uint64
	var coinbase *model.Transaction
	for i, tx := range b.Txs {
		if err := VerifyTransaction(tx); err != nil {
			return fail(model.InvariantTx)
		}
		if tx.IsCoinbase() {
			if coinbase != nil || i != len(b.Txs)-1 {
				return fail(model.InvariantCoinbase)
			}
			coinbase = tx
			continue
		}
		fees += tx.Fee
	}
	if coinbase != nil && coinbase.Amount != reward+fees {
		return fail(model.InvariantCoinbase)
	}
	return nil
}

// ExtendChain appends a block after validating it against the current tip.
// Atomic: on any validation failure the chain is left exactly as before.
func ExtendChain(c *model.Chain, b *model.Block, reward uint64) error {
	if err := IsValidBlock(b, c.Tip(), reward); err != nil {
		return err
	}
	c.Blocks = append(c.Blocks, b)
	return nil
}

// IsValidChain revalidates every block against its predecessor from genesis
// forward, for use after loading a persisted chain. Short-circuits with a
// *model.ChainValidationError carrying the index of the first broken block.
func IsValidChain(c *model.Chain, reward uint64) error {
	if len(c.Blocks) == 0 {
		return &model.ChainValidationError{Index: 0, Invariant: model.InvariantHash}
	}
	// Block 0 must be the one fixed genesis, not merely self-consistent. A
	// crafted "genesis" with extra transactions would otherwise mint funds.
	if genesis := GenesisBlock(); c.Blocks[0].Hash != genesis.Hash || HashBlock(c.Blocks[0]) != genesis.Hash {
		return &model.ChainValidationError{Index: 0, Invariant: model.InvariantHash}
	}
	for i := 1; i < len(c.Blocks); i++ {
		if err := IsValidBlock(c.Blocks[i], c.Blocks[i-1], reward); err != nil {
			return err
		}
	}
	return nil
}
