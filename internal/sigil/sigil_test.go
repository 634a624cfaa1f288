package sigil_test

import (
	"crypto/ed25519"
	"crypto/sha512"
	"errors"
	"strings"
	"testing"

	"github.com/phoniks/bs/internal/sigil"
)

func TestVerifyKeyRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	s := sigil.FormatVerifyKey(pub)
	if !strings.HasPrefix(s, "@") || !strings.HasSuffix(s, ".ed25519") {
		t.Fatalf("unexpected shape: %q", s)
	}

	got, err := sigil.ParseVerifyKey(s)
	if err != nil {
		t.Fatalf("ParseVerifyKey: %v", err)
	}
	if !pub.Equal(got) {
		t.Error("round trip changed the key")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sig := ed25519.Sign(priv, []byte("payload"))

	s := sigil.FormatSignature(sig)
	if !strings.HasSuffix(s, ".sig.ed25519") {
		t.Fatalf("unexpected shape: %q", s)
	}

	got, err := sigil.ParseSignature(s)
	if err != nil {
		t.Fatalf("ParseSignature: %v", err)
	}
	if string(got) != string(sig) {
		t.Error("round trip changed the signature")
	}
}

func TestDigestRoundTrip(t *testing.T) {
	sum := sha512.Sum512_256([]byte("hi"))

	s := sigil.FormatDigest(sum)
	if !strings.HasPrefix(s, "&") || !strings.HasSuffix(s, ".sha512_256") {
		t.Fatalf("unexpected shape: %q", s)
	}

	got, err := sigil.ParseDigest(s)
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if got != sum {
		t.Error("round trip changed the digest")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		parse func(string) error
		input string
	}{
		{"verify key wrong suffix", func(s string) error { _, err := sigil.ParseVerifyKey(s); return err }, "@AAAA.rsa"},
		{"verify key no prefix", func(s string) error { _, err := sigil.ParseVerifyKey(s); return err }, "AAAA.ed25519"},
		{"verify key bad base64", func(s string) error { _, err := sigil.ParseVerifyKey(s); return err }, "@!!.ed25519"},
		{"verify key short", func(s string) error { _, err := sigil.ParseVerifyKey(s); return err }, "@AAAA.ed25519"},
		{"signature wrong suffix", func(s string) error { _, err := sigil.ParseSignature(s); return err }, "AAAA.ed25519"},
		{"digest no prefix", func(s string) error { _, err := sigil.ParseDigest(s); return err }, "AAAA.sha512_256"},
		{"digest short", func(s string) error { _, err := sigil.ParseDigest(s); return err }, "&AAAA.sha512_256"},
		{"key box wrong suffix", func(s string) error { _, err := sigil.ParseKeyBox(s); return err }, "AAAA.box.aes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.parse(tc.input)
			if !errors.Is(err, sigil.ErrMalformed) {
				t.Fatalf("got %v, want ErrMalformed", err)
			}
		})
	}
}
