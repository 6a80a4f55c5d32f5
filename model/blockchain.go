package model

// GenesisPrevHash is the previous-hash reference recorded on the genesis
// block, which has no predecessor.
const GenesisPrevHash = "0"

// GenesisTimestamp is fixed so that every chain derives the exact same
// genesis hash and a persisted chain reloads byte-identical.
const GenesisTimestamp int64 = 1700000000

type Block struct {
	// Position in the chain, genesis is 0.
	Index int64
	// Unix timestamp at assembly time.
	Timestamp int64
	// Transactions sealed into this block. The coinbase, if any, is last.
	Txs []*Transaction
	// Hash of the previous block in the hex format.
	PrevHash string
	// Nonce is the miner's challenge for computing the block.
	Nonce uint64
	// Difficulty this block was mined at, in leading zero bits.
	Difficulty uint64
	// Hash of this entire block in the hex string format.
	Hash string
}

// Chain is the append-only sequence of blocks, genesis first. Blocks are
// never removed or mutated after acceptance.
type Chain struct {
	Blocks []*Block
}

// Tip returns the most recently appended block.
func (c *Chain) Tip() *Block {
	return c.Blocks[len(c.Blocks)-1]
}

// Height returns the index of the tip.
func (c *Chain) Height() int64 {
	return int64(len(c.Blocks)) - 1
}
