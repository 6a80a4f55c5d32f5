package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pocketcoin/pocketcoin/model"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/ripemd160"
)

// Key derivation parameters for wallet encryption.
const (
	KDFIterations = 100000
	kdfKeyLen     = 32
	saltLen       = 16
)

// Version byte prefixed to the address payload before checksumming.
const addressVersion = 0x00

// GenerateKeyPair generates a new secp256k1 key pair from a
// cryptographically secure random source.
func GenerateKeyPair() (*secp256k1.PrivateKey, *secp256k1.PublicKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, err
	}
	return priv, priv.PubKey(), nil
}

// PrivateKeyToBytes serializes the private scalar, 32 bytes.
func PrivateKeyToBytes(priv *secp256k1.PrivateKey) []byte {
	return priv.Serialize()
}

// BytesToPrivateKey restores a private key from its 32 byte scalar.
func BytesToPrivateKey(b []byte) *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(b)
}

// PublicKeyToBytes serializes the public key in compressed form, 33 bytes.
func PublicKeyToBytes(pub *secp256k1.PublicKey) []byte {
	return pub.SerializeCompressed()
}

// BytesToPublicKey parses a compressed public key.
func BytesToPublicKey(b []byte) (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(b)
}

// SHA256 hashes the message.
func SHA256(msg []byte) []byte {
	digest := sha256.Sum256(msg)
	return digest[:]
}

// Sign signs a message's SHA256 digest with the provided private key and
// returns the DER encoded signature. Signing is deterministic (RFC 6979),
// the same key and message always yield the same bytes.
func Sign(msg []byte, priv *secp256k1.PrivateKey) []byte {
	return ecdsa.Sign(priv, SHA256(msg)).Serialize()
}

// Verify reports whether the DER signature matches the message under the
// given compressed public key.
func Verify(msg []byte, pubKeyBytes []byte, sigBytes []byte) bool {
	pub, err := BytesToPublicKey(pubKeyBytes)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	return sig.Verify(SHA256(msg), pub)
}

// CreateAddress derives a wallet address from a compressed public key:
// RIPEMD160 over SHA256 of the key, then base58check with a version byte.
// One way and deterministic.
func CreateAddress(pubKeyBytes []byte) string {
	h := ripemd160.New()
	h.Write(SHA256(pubKeyBytes))
	return base58.CheckEncode(h.Sum(nil), addressVersion)
}

// IsValidAddress reports whether the address decodes to a well formed
// payload with a valid checksum.
func IsValidAddress(address string) bool {
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return false
	}
	return version == addressVersion && len(payload) == ripemd160.Size
}

// NewSalt returns a fresh random KDF salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey stretches a password into a symmetric key with PBKDF2-SHA256.
// Constant work factor, the salt is stored alongside the ciphertext.
func DeriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, kdfKeyLen, sha256.New)
}

// EncryptData seals data with AES-256-GCM under the derived key. Returns
// the random nonce and the ciphertext.
func EncryptData(data []byte, key []byte) (nonce []byte, cipherText []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return nonce, gcm.Seal(nil, nonce, data, nil), nil
}

// DecryptData opens an AES-256-GCM ciphertext. Any failure to authenticate
// surfaces as ErrAuthentication, a wrong password and a corrupted blob are
// indistinguishable by construction.
func DecryptData(cipherText []byte, nonce []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, model.ErrAuthentication
	}
	data, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	return data, nil
}
