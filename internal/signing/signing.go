// Package signing produces and checks the detached ed25519 signatures
// attached to manifest documents. Signatures always cover the manifest's
// signing bytes: the files block rendered without any signatures.
package signing

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/phoniks/bs/internal/manifest"
	"github.com/phoniks/bs/internal/sigil"
)

// ErrBadSignature reports a signature that does not verify over the
// manifest's signing bytes.
var ErrBadSignature = errors.New("signature verification failed")

// Sign computes a detached signature over the document and attaches it under
// the signer's pkid.
func Sign(doc *manifest.Document, priv ed25519.PrivateKey) error {
	if len(priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("sign manifest: key carries %d bytes, want %d", len(priv), ed25519.PrivateKeySize)
	}
	sig := ed25519.Sign(priv, doc.SigningBytes())
	doc.Signatures = append(doc.Signatures, manifest.Signature{
		PKID:      sigil.FormatVerifyKey(priv.Public().(ed25519.PublicKey)),
		Signature: sigil.FormatSignature(sig),
	})
	return nil
}

// Status is the verification outcome for one attached signature.
type Status struct {
	PKID string
	Err  error
}

// Verify checks every signature attached to the document. A document with no
// signatures fails outright; individual failures are reported per pkid so
// callers can render them, with the first error returned for exit status.
func Verify(doc *manifest.Document) ([]Status, error) {
	if len(doc.Signatures) == 0 {
		return nil, errors.New("manifest carries no signatures")
	}

	payload := doc.SigningBytes()
	statuses := make([]Status, 0, len(doc.Signatures))
	var firstErr error
	for _, attached := range doc.Signatures {
		status := Status{PKID: attached.PKID}
		status.Err = verifyOne(attached, payload)
		if status.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", attached.PKID, status.Err)
		}
		statuses = append(statuses, status)
	}
	return statuses, firstErr
}

func verifyOne(attached manifest.Signature, payload []byte) error {
	pub, err := sigil.ParseVerifyKey(attached.PKID)
	if err != nil {
		return err
	}
	sig, err := sigil.ParseSignature(attached.Signature)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, payload, sig) {
		return ErrBadSignature
	}
	return nil
}
