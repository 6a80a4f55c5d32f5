package model

// EncryptedKey is the password-protected private key blob, stored alongside
// the parameters needed to re-derive the symmetric key.
type EncryptedKey struct {
	// Hex encoded random salt fed to the key derivation function.
	Salt string `json:"salt"`
	// Hex encoded AES-GCM nonce.
	Nonce string `json:"nonce"`
	// Hex encoded ciphertext of the private scalar.
	CipherText string `json:"cipher_text"`
	// PBKDF2 iteration count used when the blob was written.
	KDFIterations int `json:"kdf_iterations"`
}

// WalletFile represents the on-disk wallet record. The private key only
// appears encrypted.
type WalletFile struct {
	Version      string       `json:"version"`
	Address      string       `json:"address"`
	PublicKey    string       `json:"public_key"`
	EncryptedKey EncryptedKey `json:"encrypted_key"`
}

// ChainFile represents the on-disk chain snapshot.
type ChainFile struct {
	Version string   `json:"version"`
	Blocks  []*Block `json:"blocks"`
}
