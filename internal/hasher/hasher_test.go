package hasher

import (
	"context"
	"crypto/sha512"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sumsByPath(hashes []Hash) map[string][DigestSize]byte {
	out := make(map[string][DigestSize]byte, len(hashes))
	for _, h := range hashes {
		out[h.Path] = h.Sum
	}
	return out
}

func TestRunHashesFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hi")
	writeFile(t, filepath.Join(dir, "d", "b.txt"), "bye")

	hashes, err := New().Run(context.Background(), []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "d"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("got %d hashes, want 2", len(hashes))
	}

	got := sumsByPath(hashes)
	want := map[string][DigestSize]byte{
		filepath.Join(dir, "a.txt"):      sha512.Sum512_256([]byte("hi")),
		filepath.Join(dir, "d", "b.txt"): sha512.Sum512_256([]byte("bye")),
	}
	for path, wantSum := range want {
		gotSum, ok := got[path]
		if !ok {
			t.Fatalf("missing hash for %s", path)
		}
		if gotSum != wantSum {
			t.Errorf("digest mismatch for %s", path)
		}
	}
}

func TestRunRecursiveDiscovery(t *testing.T) {
	dir := t.TempDir()
	var wantPaths []string
	for depth := 0; depth < 6; depth++ {
		sub := dir
		for i := 0; i <= depth; i++ {
			sub = filepath.Join(sub, fmt.Sprintf("level%d", i))
		}
		path := filepath.Join(sub, "file.txt")
		writeFile(t, path, fmt.Sprintf("depth %d", depth))
		wantPaths = append(wantPaths, path)
	}

	hashes, err := New().Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var gotPaths []string
	for _, h := range hashes {
		gotPaths = append(gotPaths, h.Path)
	}
	sort.Strings(gotPaths)
	sort.Strings(wantPaths)
	if len(gotPaths) != len(wantPaths) {
		t.Fatalf("got %d entries, want %d", len(gotPaths), len(wantPaths))
	}
	for i := range wantPaths {
		if gotPaths[i] != wantPaths[i] {
			t.Errorf("path %d: got %s, want %s", i, gotPaths[i], wantPaths[i])
		}
	}
}

func TestRunMissingRootSucceedsEmpty(t *testing.T) {
	hashes, err := New().Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("got %d hashes, want 0", len(hashes))
	}
}

func TestRunSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "real.txt"), "real")
	writeFile(t, filepath.Join(dir, "sub", "inner.txt"), "inner")
	if err := os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "file-link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "sub"), filepath.Join(dir, "dir-link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	hashes, err := New().Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := sumsByPath(hashes)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if _, ok := got[filepath.Join(dir, "file-link")]; ok {
		t.Error("file symlink produced a hash")
	}
	if _, ok := got[filepath.Join(dir, "dir-link", "inner.txt")]; ok {
		t.Error("directory symlink was traversed")
	}
}

func TestRunSymlinkRootIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "target.txt"), "target")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(filepath.Join(dir, "target.txt"), link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	hashes, err := New().Run(context.Background(), []string{link})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("symlink root produced %d hashes, want 0", len(hashes))
	}
}

func TestRunUnopenableFileSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "open.txt"), "open")
	locked := filepath.Join(dir, "locked.txt")
	writeFile(t, locked, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	hashes, err := New().Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := sumsByPath(hashes)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if _, ok := got[locked]; ok {
		t.Error("unopenable file produced a hash")
	}
}

func TestRunUnlistableDirectoryFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	dir := t.TempDir()
	sealed := filepath.Join(dir, "sealed")
	writeFile(t, filepath.Join(sealed, "hidden.txt"), "hidden")
	if err := os.Chmod(sealed, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(sealed, 0o755) })

	hashes, err := New().Run(context.Background(), []string{dir})
	if err == nil {
		t.Fatal("expected error for unlistable directory")
	}
	if hashes != nil {
		t.Fatalf("expected no partial results, got %d entries", len(hashes))
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	if _, err := New().Run(ctx, []string{dir}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRunSameContentSameDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.bin"), "identical content")
	writeFile(t, filepath.Join(dir, "two.bin"), "identical content")
	writeFile(t, filepath.Join(dir, "odd.bin"), "identical contenu")

	hashes, err := New().Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := sumsByPath(hashes)
	if got[filepath.Join(dir, "one.bin")] != got[filepath.Join(dir, "two.bin")] {
		t.Error("same content produced different digests")
	}
	if got[filepath.Join(dir, "one.bin")] == got[filepath.Join(dir, "odd.bin")] {
		t.Error("different content produced identical digests")
	}
}

type recordingProgress struct {
	mu         sync.Mutex
	total      int64
	increments int
	messages   []string
	done       bool
}

func (p *recordingProgress) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

func (p *recordingProgress) Describe(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
}

func (p *recordingProgress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.increments++
}

func (p *recordingProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
}

func TestRunReportsProgress(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, "sub", fmt.Sprintf("f%d.txt", i)), fmt.Sprintf("content %d", i))
	}

	progress := &recordingProgress{}
	hashes, err := New(WithProgress(progress)).Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	progress.mu.Lock()
	defer progress.mu.Unlock()
	if progress.increments != len(hashes) {
		t.Errorf("got %d increments, want %d", progress.increments, len(hashes))
	}
	if progress.total < int64(len(hashes)) {
		t.Errorf("final total %d below completed count %d", progress.total, len(hashes))
	}
	if !progress.done {
		t.Error("Done was never signalled")
	}
	if len(progress.messages) == 0 {
		t.Error("no progress messages recorded")
	}
}

func TestRunTerminatesUnderJitter(t *testing.T) {
	dir := t.TempDir()
	const fileCount = 120
	for i := 0; i < fileCount; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("d%d", i%8), fmt.Sprintf("f%d.txt", i)), fmt.Sprintf("payload %d", i))
	}

	rng := rand.New(rand.NewSource(1))
	var mu sync.Mutex
	jitter := func(string) {
		mu.Lock()
		delay := time.Duration(rng.Intn(3)) * time.Millisecond
		mu.Unlock()
		time.Sleep(delay)
	}
	digestStart = jitter
	scanEmit = jitter
	t.Cleanup(func() {
		digestStart = nil
		scanEmit = nil
	})

	hashes, err := New(WithWorkers(3)).Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hashes) != fileCount {
		t.Fatalf("got %d hashes, want %d", len(hashes), fileCount)
	}
}

// A scan dispatch is answered by its child messages and then a closing
// retirement, and only the retirement releases the id. Here the scan's first
// child is dispatched and hashed while the second child and the retirement
// are still unsent: the run must keep waiting and collect both files.
func TestCoordinateHoldsScanOpenUntilRetirement(t *testing.T) {
	intake := make(chan job, workerChannelCap)
	results := make(chan job, 8)
	st := &runState{
		pending:     newJobQueue([]job{{kind: jobScan, path: "dir"}}),
		outstanding: make(map[uint64]struct{}),
		nextID:      1,
		progress:    nopProgress{},
	}
	st.total = int64(st.pending.len())

	done := make(chan error, 1)
	go func() {
		done <- New(WithWorkers(1)).coordinate(context.Background(), st, []chan job{intake}, results)
	}()

	scan := <-intake
	if scan.kind != jobScan {
		t.Fatalf("first dispatch has kind %d, want scan", scan.kind)
	}
	results <- job{id: scan.id, kind: jobDigest, path: "dir/a"}

	childA := <-intake
	results <- job{id: childA.id, kind: jobHash, path: childA.path}
	results <- job{id: scan.id, kind: jobDigest, path: "dir/b"}
	results <- job{id: scan.id, kind: jobRetired}

	var childB job
	select {
	case childB = <-intake:
	case err := <-done:
		t.Fatalf("run drained before the scan retired (err=%v, %d hashes collected)", err, len(st.hashes))
	}
	results <- job{id: childB.id, kind: jobHash, path: childB.path}

	if err := <-done; err != nil {
		t.Fatalf("coordinate: %v", err)
	}
	got := make(map[string]bool, len(st.hashes))
	for _, h := range st.hashes {
		got[h.Path] = true
	}
	if len(st.hashes) != 2 || !got["dir/a"] || !got["dir/b"] {
		t.Fatalf("collected %d hashes %v, want dir/a and dir/b", len(st.hashes), got)
	}
}

func TestRunBoundedWorkerConcurrency(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 40; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%d.txt", i)), fmt.Sprintf("payload %d", i))
	}

	const workers = 4
	var active, peak atomic.Int64
	digestStart = func(string) {
		n := active.Add(1)
		for {
			current := peak.Load()
			if n <= current || peak.CompareAndSwap(current, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
	}
	t.Cleanup(func() { digestStart = nil })

	if _, err := New(WithWorkers(workers)).Run(context.Background(), []string{dir}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := peak.Load(); got > workers {
		t.Errorf("observed %d concurrent digests, want at most %d", got, workers)
	}
}

func TestQueueOrdersScansBeforeDigests(t *testing.T) {
	q := newJobQueue([]job{
		{kind: jobDigest, path: "f1"},
		{kind: jobScan, path: "d1"},
		{kind: jobDigest, path: "f2"},
		{kind: jobScan, path: "d2"},
	})

	for i := 0; i < 2; i++ {
		if got := q.pop(); got.kind != jobScan {
			t.Fatalf("pop %d: got kind %d, want scan", i, got.kind)
		}
	}
	for i := 2; i < 4; i++ {
		if got := q.pop(); got.kind != jobDigest {
			t.Fatalf("pop %d: got kind %d, want digest", i, got.kind)
		}
	}
	if q.len() != 0 {
		t.Fatalf("queue not drained: %d left", q.len())
	}
}

func TestClassifyPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, "x")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(file, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if j, ok := classifyPath(file); !ok || j.kind != jobDigest {
		t.Errorf("file: got (%v, %v), want digest job", j.kind, ok)
	}
	if j, ok := classifyPath(dir); !ok || j.kind != jobScan {
		t.Errorf("dir: got (%v, %v), want scan job", j.kind, ok)
	}
	if _, ok := classifyPath(link); ok {
		t.Error("symlink was classified as work")
	}
	if _, ok := classifyPath(filepath.Join(dir, "absent")); ok {
		t.Error("missing path was classified as work")
	}
}

func TestDigestFileEmptyAndLarge(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	writeFile(t, empty, "")
	sum, ok, err := digestFile(empty)
	if err != nil || !ok {
		t.Fatalf("digest empty file: ok=%v err=%v", ok, err)
	}
	if want := sha512.Sum512_256(nil); sum != want {
		t.Error("empty-file digest mismatch")
	}

	// Spans many read chunks.
	payload := make([]byte, digestChunkSize*3+17)
	for i := range payload {
		payload[i] = byte(i)
	}
	large := filepath.Join(dir, "large")
	writeFile(t, large, string(payload))
	sum, ok, err = digestFile(large)
	if err != nil || !ok {
		t.Fatalf("digest large file: ok=%v err=%v", ok, err)
	}
	if want := sha512.Sum512_256(payload); sum != want {
		t.Error("large-file digest mismatch")
	}

	if _, ok, err := digestFile(filepath.Join(dir, "missing")); ok || err != nil {
		t.Fatalf("missing file: got ok=%v err=%v, want skip", ok, err)
	}
}
