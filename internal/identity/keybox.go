package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/phoniks/bs/internal/sigil"
)

const (
	boxNonceSize = 24
	boxKeySize   = 32
	kdfSaltSize  = 16
)

// kdfParams are a protocol constant: the key box sigil encodes no parameters,
// so changing these invalidates every existing sealed key. They mirror
// libsodium's SENSITIVE limits for argon2id (4 passes over 1 GiB, one lane).
type kdfParams struct {
	passes    uint32
	memoryKiB uint32
	lanes     uint8
}

var boxKDF = kdfParams{passes: 4, memoryKiB: 1 << 20, lanes: 1}

// sealKeyBox encrypts an ed25519 private key under a passphrase-derived key.
// The box layout is nonce followed by ciphertext; the KDF salt is the tail of
// the nonce, so the sigil is self-contained.
func sealKeyBox(priv ed25519.PrivateKey, passphrase []byte) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("seal signing key: key carries %d bytes, want %d", len(priv), ed25519.PrivateKeySize)
	}

	var nonce [boxNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("seal signing key: %w", err)
	}

	key := deriveBoxKey(passphrase, nonce)
	sealed := secretbox.Seal(nonce[:], priv, &nonce, &key)
	return sigil.FormatKeyBox(sealed), nil
}

// openKeyBox reverses sealKeyBox. A box that fails to authenticate reports
// ErrPassphrase: a wrong passphrase and a tampered box are indistinguishable.
func openKeyBox(boxSigil string, passphrase []byte) (ed25519.PrivateKey, error) {
	box, err := sigil.ParseKeyBox(boxSigil)
	if err != nil {
		return nil, err
	}
	if len(box) <= boxNonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("unlock signing key: key box too short (%d bytes)", len(box))
	}

	var nonce [boxNonceSize]byte
	copy(nonce[:], box[:boxNonceSize])
	key := deriveBoxKey(passphrase, nonce)

	plain, ok := secretbox.Open(nil, box[boxNonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrPassphrase
	}
	if len(plain) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unlock signing key: box holds %d bytes, want %d", len(plain), ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(plain), nil
}

func deriveBoxKey(passphrase []byte, nonce [boxNonceSize]byte) [boxKeySize]byte {
	salt := nonce[boxNonceSize-kdfSaltSize:]
	var key [boxKeySize]byte
	copy(key[:], argon2.IDKey(passphrase, salt, boxKDF.passes, boxKDF.memoryKiB, boxKDF.lanes, boxKeySize))
	return key
}
