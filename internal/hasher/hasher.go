// Package hasher implements the compact term hash used for index tokens and
// bookmark identifiers.
package hasher

import (
	"strconv"
	"unicode/utf16"
)

// Offset is the initial accumulator value. Sum32("") returns it unchanged.
const Offset uint32 = 0x811c9dc5

// TokenWidth is the number of hex characters kept for an index token.
const TokenWidth = 4

// Sum32 hashes s with a 32-bit FNV-1a variant. Input is consumed as UTF-16
// code units so hashes agree with indices built from browser strings.
func Sum32(s string) uint32 {
	h := Offset
	for _, c := range utf16.Encode([]rune(s)) {
		h ^= uint32(c)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}

// Hex renders Sum32(s) as lowercase hex without zero padding.
func Hex(s string) string {
	return strconv.FormatUint(uint64(Sum32(s)), 16)
}

// Token returns the first TokenWidth characters of Hex(s).
func Token(s string) string {
	h := Hex(s)
	if len(h) > TokenWidth {
		return h[:TokenWidth]
	}
	return h
}
