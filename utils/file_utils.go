package utils

import (
	"encoding/json"
	"os"

	"github.com/pocketcoin/pocketcoin/model"
)

// FileVersion tags the on-disk wallet and chain records.
const FileVersion = "1.0"

// SaveWalletFile writes the wallet record as JSON. The private key in it is
// encrypted, the file never contains the clear scalar.
func SaveWalletFile(wf *model.WalletFile, path string) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadWalletFile reads a wallet record back from disk.
func LoadWalletFile(path string) (*model.WalletFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wf model.WalletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// SaveChainToFile snapshots the block sequence as JSON.
func SaveChainToFile(c *model.Chain, path string) error {
	cf := model.ChainFile{
		Version: FileVersion,
		Blocks:  c.Blocks,
	}
	data, err := json.MarshalIndent(&cf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadChainFromFile restores a chain snapshot and revalidates the whole
// history. A corrupted snapshot is reported with the index of the first
// invalid block rather than silently truncated.
func LoadChainFromFile(path string, reward uint64) (*model.Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf model.ChainFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	c := &model.Chain{Blocks: cf.Blocks}
	if err := IsValidChain(c, reward); err != nil {
		return nil, err
	}
	return c, nil
}
