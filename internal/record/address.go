package record

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// addressDigits is the width of a padded address without its 0x prefix.
const addressDigits = 64

// Address is a player identifier in checksum form.
//
// Construct it with NormalizeAddress. Comparing an Address to a raw,
// un-normalized string is always a bug.
type Address string

// String returns the checksum form.
func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool {
	return a == ""
}

// Short renders the address as 0x1234…abcd for display.
func (a Address) Short() string {
	s := string(a)
	if len(s) < 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

// NormalizeAddress converts a raw hex identifier to checksum form.
//
// The input may carry a 0x prefix, any letter case and any amount of
// leading-zero padding. The output is 0x followed by 64 hex digits whose
// letter case encodes a keccak-256 checksum of the address value, so two
// spellings of the same address always normalize to the same string.
func NormalizeAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return "", fmt.Errorf("normalize address %q: empty", raw)
	}
	if len(s) > addressDigits {
		s = strings.TrimLeft(s, "0")
		if len(s) > addressDigits {
			return "", fmt.Errorf("normalize address %q: longer than %d digits", raw, addressDigits)
		}
	}
	s = strings.ToLower(s)
	for _, c := range s {
		if !isHexDigit(c) {
			return "", fmt.Errorf("normalize address %q: invalid hex digit %q", raw, c)
		}
	}

	chars := []byte(strings.Repeat("0", addressDigits-len(s)) + s)
	digest := checksumDigest(s)
	for i := 0; i < addressDigits; i += 2 {
		b := digest[i/2]
		if b>>4 >= 8 {
			chars[i] = upper(chars[i])
		}
		if b&0x0f >= 8 {
			chars[i+1] = upper(chars[i+1])
		}
	}
	return Address("0x" + string(chars)), nil
}

// MustAddress is like NormalizeAddress but panics on error.
// Use only in tests or with literal inputs known to be valid.
func MustAddress(raw string) Address {
	a, err := NormalizeAddress(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// checksumDigest hashes the minimal big-endian encoding of the address
// value and masks it to 250 bits.
func checksumDigest(lowerHex string) []byte {
	n, _ := new(big.Int).SetString(lowerHex, 16)
	value := n.Bytes()
	if len(value) == 0 {
		value = []byte{0}
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(value)
	digest := h.Sum(nil)
	digest[0] &= 0x03
	return digest
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'f' {
		return c - ('a' - 'A')
	}
	return c
}
