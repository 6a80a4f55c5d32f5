package wallet

import (
	"sync"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pocketcoin/pocketcoin/model"
	"github.com/pocketcoin/pocketcoin/utils"
)

// Wallet holds a keypair and its derived address. The private key is
// resident in memory only while the wallet is unlocked. Lock, Unlock and
// Sign are serialized per wallet, signing never races a concurrent lock.
type Wallet struct {
	// nil while locked.
	keys *secp256k1.PrivateKey
	// Compressed public key, retained while locked.
	publicKey []byte
	// Base58check address derived from the public key.
	Address string
	// Ciphertext of the private key, present after a Lock or a load from
	// disk.
	encrypted *model.EncryptedKey

	m sync.Mutex
}

// NewWallet generates a fresh keypair and derives the address. The wallet
// starts unlocked.
func NewWallet() (*Wallet, error) {
	priv, pub, err := utils.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	pubBytes := utils.PublicKeyToBytes(pub)
	return &Wallet{
		keys:      priv,
		publicKey: pubBytes,
		Address:   utils.CreateAddress(pubBytes),
	}, nil
}

// ImportWallet restores a wallet from a raw private key hex string. The
// wallet starts unlocked.
func ImportWallet(privHex string) (*Wallet, error) {
	raw, err := utils.HexToBytes(privHex)
	if err != nil {
		return nil, err
	}
	priv := utils.BytesToPrivateKey(raw)
	pubBytes := utils.PublicKeyToBytes(priv.PubKey())
	return &Wallet{
		keys:      priv,
		publicKey: pubBytes,
		Address:   utils.CreateAddress(pubBytes),
	}, nil
}

// IsUnlocked reports whether the private key is resident in memory.
func (w *Wallet) IsUnlocked() bool {
	w.m.Lock()
	defer w.m.Unlock()
	return w.keys != nil
}

// PublicKey returns the compressed public key bytes.
func (w *Wallet) PublicKey() []byte {
	return w.publicKey
}

// Lock encrypts the private key under the password and discards the
// plaintext from the live wallet. Only public data and the ciphertext are
// retained afterwards.
func (w *Wallet) Lock(password string) error {
	w.m.Lock()
	defer w.m.Unlock()
	if w.keys == nil {
		return model.ErrWalletLocked
	}
	salt, err := utils.NewSalt()
	if err != nil {
		return err
	}
	key := utils.DeriveKey(password, salt, utils.KDFIterations)
	secret := utils.PrivateKeyToBytes(w.keys)
	nonce, cipherText, err := utils.EncryptData(secret, key)
	if err != nil {
		return err
	}
	for i := range secret {
		secret[i] = 0
	}
	w.encrypted = &model.EncryptedKey{
		Salt:          utils.BytesToHex(salt),
		Nonce:         utils.BytesToHex(nonce),
		CipherText:    utils.BytesToHex(cipherText),
		KDFIterations: utils.KDFIterations,
	}
	w.keys.Zero()
	w.keys = nil
	return nil
}

// Unlock restores the private key from the retained ciphertext. Fails with
// ErrAuthentication on a wrong password or a corrupted blob, never
// partially succeeds.
func (w *Wallet) Unlock(password string) error {
	w.m.Lock()
	defer w.m.Unlock()
	if w.keys != nil {
		return nil
	}
	if w.encrypted == nil {
		return model.ErrAuthentication
	}
	priv, err := decryptKey(password, w.encrypted)
	if err != nil {
		return err
	}
	// Guard against a blob that decrypts to a different key.
	pubBytes := utils.PublicKeyToBytes(priv.PubKey())
	if utils.CreateAddress(pubBytes) != w.Address {
		return model.ErrAuthentication
	}
	w.keys = priv
	return nil
}

func decryptKey(password string, enc *model.EncryptedKey) (*secp256k1.PrivateKey, error) {
	salt, err := utils.HexToBytes(enc.Salt)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	nonce, err := utils.HexToBytes(enc.Nonce)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	cipherText, err := utils.HexToBytes(enc.CipherText)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	key := utils.DeriveKey(password, salt, enc.KDFIterations)
	secret, err := utils.DecryptData(cipherText, nonce, key)
	if err != nil {
		return nil, err
	}
	return utils.BytesToPrivateKey(secret), nil
}

// PrivateKeyHex exports the raw private scalar as hex, for backup. Fails
// with ErrWalletLocked while the key is not resident.
func (w *Wallet) PrivateKeyHex() (string, error) {
	w.m.Lock()
	defer w.m.Unlock()
	if w.keys == nil {
		return "", model.ErrWalletLocked
	}
	return utils.BytesToHex(utils.PrivateKeyToBytes(w.keys)), nil
}

// Sign signs the message with the private key. Fails with ErrWalletLocked
// while the key is not resident.
func (w *Wallet) Sign(msg []byte) ([]byte, error) {
	w.m.Lock()
	defer w.m.Unlock()
	if w.keys == nil {
		return nil, model.ErrWalletLocked
	}
	return utils.Sign(msg, w.keys), nil
}

// NewTransaction builds, hashes and signs a transfer from this wallet.
// The transaction is immutable once signed, any later mutation makes
// verification fail.
func (w *Wallet) NewTransaction(recipient string, amount uint64, fee uint64, message string) (*model.Transaction, error) {
	if amount == 0 {
		return nil, model.ErrInvalidAmount
	}
	if !utils.IsValidAddress(recipient) || recipient == w.Address {
		return nil, model.ErrInvalidAddress
	}
	if len(message) > model.MaxMessageLen {
		return nil, model.ErrMessageTooLong
	}
	tx := &model.Transaction{
		Sender:    w.Address,
		Recipient: recipient,
		Amount:    amount,
		Fee:       fee,
		Message:   message,
		Timestamp: time.Now().Unix(),
		PublicKey: w.publicKey,
	}
	sig, err := w.Sign(utils.GetTransactionDataBytes(tx))
	if err != nil {
		return nil, err
	}
	tx.Signature = sig
	tx.Hash = utils.HashTransaction(tx)
	return tx, nil
}

// Save locks a copy of the key material under the password and writes the
// wallet record to disk. The in-memory wallet stays in its current state.
// On a locked wallet the retained encrypted blob is written as is, and the
// password must match the one it was locked under, re-keying requires an
// unlocked wallet.
func (w *Wallet) Save(path string, password string) error {
	w.m.Lock()
	if w.keys == nil && w.encrypted == nil {
		w.m.Unlock()
		return model.ErrWalletLocked
	}
	if w.keys == nil {
		priv, err := decryptKey(password, w.encrypted)
		if err != nil {
			w.m.Unlock()
			return err
		}
		priv.Zero()
	}
	if w.keys != nil {
		salt, err := utils.NewSalt()
		if err != nil {
			w.m.Unlock()
			return err
		}
		key := utils.DeriveKey(password, salt, utils.KDFIterations)
		nonce, cipherText, err := utils.EncryptData(utils.PrivateKeyToBytes(w.keys), key)
		if err != nil {
			w.m.Unlock()
			return err
		}
		w.encrypted = &model.EncryptedKey{
			Salt:          utils.BytesToHex(salt),
			Nonce:         utils.BytesToHex(nonce),
			CipherText:    utils.BytesToHex(cipherText),
			KDFIterations: utils.KDFIterations,
		}
	}
	wf := &model.WalletFile{
		Version:      utils.FileVersion,
		Address:      w.Address,
		PublicKey:    utils.BytesToHex(w.publicKey),
		EncryptedKey: *w.encrypted,
	}
	w.m.Unlock()
	return utils.SaveWalletFile(wf, path)
}

// LoadWallet reads a wallet record from disk. The returned wallet is
// locked, Unlock restores the private key.
func LoadWallet(path string) (*Wallet, error) {
	wf, err := utils.LoadWalletFile(path)
	if err != nil {
		return nil, err
	}
	pubBytes, err := utils.HexToBytes(wf.PublicKey)
	if err != nil {
		return nil, err
	}
	enc := wf.EncryptedKey
	return &Wallet{
		publicKey: pubBytes,
		Address:   utils.CreateAddress(pubBytes),
		encrypted: &enc,
	}, nil
}
