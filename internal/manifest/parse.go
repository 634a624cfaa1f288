package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidManifest reports a document that is not a manifest this tool
// could have produced.
var ErrInvalidManifest = errors.New("invalid manifest")

// Parse reads a manifest document, preserving file entry order so signatures
// can be verified over the reconstructed signing bytes. A manifest without a
// signatures block is accepted; unknown top-level keys are not.
func Parse(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	doc := &Document{}
	sawFiles := false
	for dec.More() {
		key, err := expectString(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "files":
			if sawFiles {
				return nil, fmt.Errorf("%w: duplicate files block", ErrInvalidManifest)
			}
			sawFiles = true
			pairs, err := readStringBlock(dec)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				doc.Files = append(doc.Files, Entry{Path: p[0], Digest: p[1]})
			}
		case "signatures":
			pairs, err := readStringBlock(dec)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				doc.Signatures = append(doc.Signatures, Signature{PKID: p[0], Signature: p[1]})
			}
		default:
			return nil, fmt.Errorf("%w: unexpected key %q", ErrInvalidManifest, key)
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if !sawFiles {
		return nil, fmt.Errorf("%w: missing files block", ErrInvalidManifest)
	}
	return doc, nil
}

// readStringBlock consumes one {"k": "v", ...} object, keeping pair order.
func readStringBlock(dec *json.Decoder) ([][2]string, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var pairs [][2]string
	for dec.More() {
		key, err := expectString(dec)
		if err != nil {
			return nil, err
		}
		value, err := expectString(dec)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]string{key, value})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return pairs, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("%w: expected %q, found %v", ErrInvalidManifest, want, tok)
	}
	return nil
}

func expectString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, found %v", ErrInvalidManifest, tok)
	}
	return s, nil
}
