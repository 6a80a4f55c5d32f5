package utils

import (
	"encoding/binary"
	"encoding/hex"
)

func BytesToHex(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexToBytes(str string) ([]byte, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// Uint64ToBytes encodes fixed-width big-endian. Canonical encodings must be
// injective, so no varints here.
func Uint64ToBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func Int64ToBytes(i int64) []byte {
	return Uint64ToBytes(uint64(i))
}

// StringToBytes length-prefixes the string so that adjacent fields can
// never bleed into each other.
func StringToBytes(s string) []byte {
	b := Uint64ToBytes(uint64(len(s)))
	return append(b, s...)
}
