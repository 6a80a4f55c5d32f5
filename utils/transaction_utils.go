package utils

import (
	"math"

	"github.com/pocketcoin/pocketcoin/model"
)

// GetTransactionDataBytes concatenates the canonical byte representation of
// every field that is covered by the signature. The carried public key and
// the signature itself are excluded: the public key is bound through the
// sender address, which is signed.
func GetTransactionDataBytes(t *model.Transaction) []byte {
	var data []byte
	data = append(data, StringToBytes(t.Sender)...)
	data = append(data, StringToBytes(t.Recipient)...)
	data = append(data, Uint64ToBytes(t.Amount)...)
	data = append(data, Uint64ToBytes(t.Fee)...)
	data = append(data, StringToBytes(t.Message)...)
	data = append(data, Int64ToBytes(t.Timestamp)...)
	return data
}

// HashTransaction computes the content hash over the canonical bytes, in
// hex. This is the transaction's identity and dedup key.
func HashTransaction(t *model.Transaction) string {
	return BytesToHex(SHA256(GetTransactionDataBytes(t)))
}

// NewCoinbaseTransaction builds the miner reward transaction. It has no
// signature and is only valid embedded in a block, last, with amount equal
// to the reward plus the block's collected fees.
func NewCoinbaseTransaction(minerAddress string, amount uint64, timestamp int64) *model.Transaction {
	tx := &model.Transaction{
		Sender:    model.CoinbaseSender,
		Recipient: minerAddress,
		Amount:    amount,
		Message:   "mining reward",
		Timestamp: timestamp,
	}
	tx.Hash = HashTransaction(tx)
	return tx
}

// VerifyTransaction checks a transaction against its own canonical bytes:
// 1. Basic fields are well formed.
// 2. The stored hash matches the recomputed content hash.
// 3. The sender address derives from the carried public key.
// 4. The signature verifies over the canonical bytes.
// Coinbase transactions pass structural checks only, they carry no
// signature. Returns nil if the transaction is valid.
func VerifyTransaction(t *model.Transaction) error {
	if t.Amount == 0 {
		return model.ErrInvalidAmount
	}
	// Amount plus fee must stay within the signed accounting range, so the
	// spend checks and the balance fold cannot wrap.
	if t.Fee > math.MaxInt64 || t.Amount > math.MaxInt64-t.Fee {
		return model.ErrInvalidAmount
	}
	if len(t.Message) > model.MaxMessageLen {
		return model.ErrMessageTooLong
	}
	if t.Hash != HashTransaction(t) {
		return model.ErrInvalidSignature
	}
	if t.IsCoinbase() {
		if len(t.Signature) != 0 || len(t.PublicKey) != 0 {
			return model.ErrInvalidSignature
		}
		if !IsValidAddress(t.Recipient) {
			return model.ErrInvalidAddress
		}
		return nil
	}
	if !IsValidAddress(t.Sender) || !IsValidAddress(t.Recipient) {
		return model.ErrInvalidAddress
	}
	if t.Sender == t.Recipient {
		return model.ErrInvalidAddress
	}
	if CreateAddress(t.PublicKey) != t.Sender {
		return model.ErrInvalidSignature
	}
	if !Verify(GetTransactionDataBytes(t), t.PublicKey, t.Signature) {
		return model.ErrInvalidSignature
	}
	return nil
}
