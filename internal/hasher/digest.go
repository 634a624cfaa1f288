package hasher

import (
	"crypto/sha512"
	"fmt"
	"io"
	"os"
)

// digestChunkSize bounds per-file memory use regardless of file size.
const digestChunkSize = 8 * 1024

// digestStart, when set, runs before each file digest. Tests use it to inject
// scheduling jitter and observe worker concurrency.
var digestStart func(path string)

// digestFile streams the file at path through SHA-512/256. A failed open
// returns ok=false with a nil error: the path is skipped, not reported. A
// read failure after a successful open is a real error and aborts the run.
// Safe to call concurrently; no shared state.
func digestFile(path string) (sum [DigestSize]byte, ok bool, err error) {
	if digestStart != nil {
		digestStart(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return sum, false, nil
	}
	defer file.Close()

	h := sha512.New512_256()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, file, buf); err != nil {
		return sum, false, fmt.Errorf("read %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, true, nil
}
