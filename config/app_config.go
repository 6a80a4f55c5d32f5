package config

// This is the global app config for the engine. Difficulty is explicit
// configuration threaded into assembly and mining, not a hidden global, so
// it can be varied deterministically between mining attempts.
type AppConfig struct {
	// How many leading zero bits a valid block hash must have.
	DIFFICULTY uint64 `yaml:"difficulty"`
	// The reward paid to the miner on top of collected fees.
	COINBASE_REWARD uint64 `yaml:"coinbase_reward"`
	// Cap on pool transactions sealed into one block, 0 means no cap.
	MAX_TXS_PER_BLOCK int `yaml:"max_txs_per_block"`
	// Report mining progress every this many attempts, 0 disables.
	PROGRESS_INTERVAL uint64 `yaml:"progress_interval"`
}

// DefaultConfig mirrors the shipped config.yaml.
func DefaultConfig() AppConfig {
	return AppConfig{
		DIFFICULTY:        16,
		COINBASE_REWARD:   10,
		MAX_TXS_PER_BLOCK: 64,
		PROGRESS_INTERVAL: 100000,
	}
}
