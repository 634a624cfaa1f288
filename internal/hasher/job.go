package hasher

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DigestSize is the byte length of a file digest (SHA-512/256).
const DigestSize = 32

// Hash pairs a file path with its content digest. Hashes are the only values
// that outlive an engine run.
type Hash struct {
	Path string
	Sum  [DigestSize]byte
}

type jobKind int

// Result kinds are never queued, so only scan and digest carry a priority
// rank. Scanning outranks digesting: expanding directories first makes the
// true amount of work known as early as possible and keeps workers fed.
const (
	jobRetired jobKind = iota
	jobHash
	jobDigest
	jobScan
)

// job is the unit of work exchanged between the coordinator and workers. The
// id is unique per dispatch, assigned by the coordinator; jobs discovered by
// a scan carry the dispatching parent's id until they are themselves
// dispatched.
type job struct {
	id   uint64
	kind jobKind
	path string
	sum  [DigestSize]byte
}

func (j job) priority() int { return int(j.kind) }

// classifyPath inspects path metadata without following symlinks. Regular
// files become digest jobs, directories become scan jobs, and everything else
// (symlinks, special files, missing paths) is skipped.
func classifyPath(path string) (job, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return job{}, false
	}
	return classifyMode(path, info.Mode())
}

func classifyMode(path string, mode fs.FileMode) (job, bool) {
	switch {
	case mode.IsRegular():
		return job{kind: jobDigest, path: path}, true
	case mode.IsDir():
		return job{kind: jobScan, path: path}, true
	default:
		return job{}, false
	}
}

// classifyRoots converts the caller's root paths into the initial pending
// jobs, silently dropping anything that is neither a file nor a directory.
func classifyRoots(paths []string) []job {
	jobs := make([]job, 0, len(paths))
	for _, p := range paths {
		if j, ok := classifyPath(filepath.Clean(p)); ok {
			jobs = append(jobs, j)
		}
	}
	return jobs
}
