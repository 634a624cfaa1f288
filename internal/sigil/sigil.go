package sigil

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Sigil shapes:
//
//	verify key  @<base64url>.ed25519
//	signature   <base64url>.sig.ed25519
//	digest      &<base64url>.sha512_256
//	key box     <base64url>.box.xsalsa20poly1305
const (
	verifyKeyPrefix = "@"
	verifyKeySuffix = ".ed25519"
	signatureSuffix = ".sig.ed25519"
	digestPrefix    = "&"
	digestSuffix    = ".sha512_256"
	keyBoxSuffix    = ".box.xsalsa20poly1305"
)

// DigestSize is the byte length of a sha512_256 digest sigil's payload.
const DigestSize = 32

var encoding = base64.URLEncoding

// ErrMalformed reports a string that does not match the expected sigil shape.
var ErrMalformed = errors.New("malformed sigil")

// FormatVerifyKey renders an ed25519 public key as a pkid sigil.
func FormatVerifyKey(pub ed25519.PublicKey) string {
	return verifyKeyPrefix + encoding.EncodeToString(pub) + verifyKeySuffix
}

// ParseVerifyKey extracts the 32-byte ed25519 public key from a pkid sigil.
func ParseVerifyKey(s string) (ed25519.PublicKey, error) {
	data, err := decode(s, verifyKeyPrefix, verifyKeySuffix, "verify key")
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: verify key carries %d bytes, want %d", ErrMalformed, len(data), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(data), nil
}

// FormatSignature renders a detached ed25519 signature as a sigil.
func FormatSignature(sig []byte) string {
	return encoding.EncodeToString(sig) + signatureSuffix
}

// ParseSignature extracts the 64-byte signature from a signature sigil.
func ParseSignature(s string) ([]byte, error) {
	data, err := decode(s, "", signatureSuffix, "signature")
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature carries %d bytes, want %d", ErrMalformed, len(data), ed25519.SignatureSize)
	}
	return data, nil
}

// FormatDigest renders a sha512_256 content digest as a sigil.
func FormatDigest(sum [DigestSize]byte) string {
	return digestPrefix + encoding.EncodeToString(sum[:]) + digestSuffix
}

// ParseDigest extracts the 32-byte digest from a digest sigil.
func ParseDigest(s string) ([DigestSize]byte, error) {
	var sum [DigestSize]byte
	data, err := decode(s, digestPrefix, digestSuffix, "digest")
	if err != nil {
		return sum, err
	}
	if len(data) != DigestSize {
		return sum, fmt.Errorf("%w: digest carries %d bytes, want %d", ErrMalformed, len(data), DigestSize)
	}
	copy(sum[:], data)
	return sum, nil
}

// FormatKeyBox renders a sealed key box (nonce followed by ciphertext) as a
// sigil.
func FormatKeyBox(box []byte) string {
	return encoding.EncodeToString(box) + keyBoxSuffix
}

// ParseKeyBox extracts the raw nonce-plus-ciphertext bytes from a key box
// sigil. Length validation belongs to the unseal step, which knows the nonce
// and overhead sizes.
func ParseKeyBox(s string) ([]byte, error) {
	return decode(s, "", keyBoxSuffix, "key box")
}

func decode(s, prefix, suffix, kind string) ([]byte, error) {
	body := strings.TrimSpace(s)
	if prefix != "" {
		trimmed, ok := strings.CutPrefix(body, prefix)
		if !ok {
			return nil, fmt.Errorf("%w: %s missing %q prefix", ErrMalformed, kind, prefix)
		}
		body = trimmed
	}
	trimmed, ok := strings.CutSuffix(body, suffix)
	if !ok {
		return nil, fmt.Errorf("%w: %s missing %q suffix", ErrMalformed, kind, suffix)
	}
	data, err := encoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not url-safe base64: %v", ErrMalformed, kind, err)
	}
	return data, nil
}
