package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
)

// AddressPrefix is prepended to every derived address
const AddressPrefix = "inj1"

const addressHexLen = 38

// mnemonicWords is the fixed demo word list. It is NOT the BIP-39 list and
// the phrases it produces carry no real entropy guarantees.
var mnemonicWords = [48]string{
	"abandon", "ability", "able", "about", "above", "absent", "absorb", "abstract",
	"absurd", "abuse", "access", "accident", "account", "accuse", "achieve", "acid",
	"acoustic", "acquire", "across", "act", "action", "actor", "actress", "actual",
	"adapt", "add", "addict", "address", "adjust", "admit", "adult", "advance",
	"advice", "aerobic", "affair", "afford", "afraid", "again", "age", "agent",
	"agree", "ahead", "aim", "air", "airport", "aisle", "alarm", "album",
}

// MnemonicWordCount is the length of a generated phrase
const MnemonicWordCount = 12

// GenerateMnemonic draws MnemonicWordCount words uniformly, with replacement,
// from the demo word list.
func GenerateMnemonic() (string, error) {
	words := make([]string, MnemonicWordCount)
	max := big.NewInt(int64(len(mnemonicWords)))
	for i := range words {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		words[i] = mnemonicWords[n.Int64()]
	}
	return strings.Join(words, " "), nil
}

// DeriveAddress maps a mnemonic to a display address with a 32-bit rolling
// string hash folded into 38 hex digits.
//
// This is a placeholder, not key derivation. Anyone can compute the address
// from the phrase and collisions are trivial, so it must never guard funds.
func DeriveAddress(mnemonic string) string {
	var acc int64
	for _, unit := range utf16.Encode([]rune(mnemonic)) {
		shifted := int32(uint32(int32(uint32(acc))) << 5)
		acc = int64(shifted) - acc + int64(unit)
	}
	if acc < 0 {
		acc = -acc
	}

	hex := strconv.FormatInt(acc, 16)
	if len(hex) < addressHexLen {
		hex = strings.Repeat("0", addressHexLen-len(hex)) + hex
	}
	return AddressPrefix + hex[:addressHexLen]
}

// NormalizeMnemonic splits on any whitespace and re-joins with single spaces.
// It returns the word count alongside the normalized phrase.
func NormalizeMnemonic(raw string) (string, int) {
	words := strings.Fields(raw)
	return strings.Join(words, " "), len(words)
}
