package manifest

import (
	"encoding/json"
	"strings"

	"github.com/phoniks/bs/internal/hasher"
	"github.com/phoniks/bs/internal/sigil"
)

// Entry is one manifest line: a file path mapped to its digest sigil.
type Entry struct {
	Path   string
	Digest string
}

// Signature attributes a signature sigil to the pkid that produced it.
type Signature struct {
	PKID      string
	Signature string
}

// Document is a manifest in memory. Files keep the order they were added in;
// signatures cover the rendering of the files block alone.
type Document struct {
	Files      []Entry
	Signatures []Signature
}

// Build converts engine output into a manifest document, preserving the given
// hash order. Callers wanting deterministic output sort the hashes first.
func Build(hashes []hasher.Hash) *Document {
	doc := &Document{Files: make([]Entry, 0, len(hashes))}
	for _, h := range hashes {
		doc.Files = append(doc.Files, Entry{Path: h.Path, Digest: sigil.FormatDigest(h.Sum)})
	}
	return doc
}

// SigningBytes renders the document without signatures: the exact payload
// every signature covers.
func (d *Document) SigningBytes() []byte {
	var b strings.Builder
	d.writeFiles(&b)
	b.WriteString("\n}")
	return []byte(b.String())
}

// Render produces the final document text, signature block included.
func (d *Document) Render() []byte {
	var b strings.Builder
	d.writeFiles(&b)
	if len(d.Signatures) == 0 {
		b.WriteString("\n}")
		return []byte(b.String())
	}
	b.WriteString(",\n  \"signatures\": {\n")
	for i, sig := range d.Signatures {
		b.WriteString("    ")
		b.WriteString(quote(sig.PKID))
		b.WriteString(": ")
		b.WriteString(quote(sig.Signature))
		if i < len(d.Signatures)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("  }\n}")
	return []byte(b.String())
}

func (d *Document) writeFiles(b *strings.Builder) {
	b.WriteString("{\n  \"files\": {\n")
	for i, entry := range d.Files {
		b.WriteString("    ")
		b.WriteString(quote(entry.Path))
		b.WriteString(": ")
		b.WriteString(quote(entry.Digest))
		if i < len(d.Files)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("  }")
}

func quote(s string) string {
	// Marshalling a string cannot fail.
	data, _ := json.Marshal(s)
	return string(data)
}
