package manifest

import (
	"sort"

	"github.com/phoniks/bs/internal/hasher"
	"github.com/phoniks/bs/internal/sigil"
)

// FileState classifies one path during verification.
type FileState int

const (
	// StateOK means the recomputed digest matches the manifest.
	StateOK FileState = iota
	// StateModified means the file exists but its content changed.
	StateModified
	// StateMissing means the listed file produced no digest, either because
	// it is gone or could not be opened.
	StateMissing
	// StateInvalid means the manifest's digest sigil could not be parsed.
	StateInvalid
	// StateUnlisted means a digest was computed for a path the manifest
	// does not mention.
	StateUnlisted
)

func (s FileState) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateModified:
		return "modified"
	case StateMissing:
		return "missing"
	case StateInvalid:
		return "invalid"
	case StateUnlisted:
		return "unlisted"
	default:
		return "unknown"
	}
}

// FileStatus is the verification outcome for one path.
type FileStatus struct {
	Path  string
	State FileState
}

// Diff compares recomputed hashes against the manifest's entries. Listed
// paths come back in manifest order, followed by any unlisted extras in path
// order.
func (d *Document) Diff(hashes []hasher.Hash) []FileStatus {
	recomputed := make(map[string][hasher.DigestSize]byte, len(hashes))
	for _, h := range hashes {
		recomputed[h.Path] = h.Sum
	}

	statuses := make([]FileStatus, 0, len(d.Files))
	listed := make(map[string]struct{}, len(d.Files))
	for _, entry := range d.Files {
		listed[entry.Path] = struct{}{}

		want, err := sigil.ParseDigest(entry.Digest)
		if err != nil {
			statuses = append(statuses, FileStatus{Path: entry.Path, State: StateInvalid})
			continue
		}
		got, ok := recomputed[entry.Path]
		switch {
		case !ok:
			statuses = append(statuses, FileStatus{Path: entry.Path, State: StateMissing})
		case got != want:
			statuses = append(statuses, FileStatus{Path: entry.Path, State: StateModified})
		default:
			statuses = append(statuses, FileStatus{Path: entry.Path, State: StateOK})
		}
	}

	var extras []string
	for path := range recomputed {
		if _, ok := listed[path]; !ok {
			extras = append(extras, path)
		}
	}
	sort.Strings(extras)
	for _, path := range extras {
		statuses = append(statuses, FileStatus{Path: path, State: StateUnlisted})
	}
	return statuses
}
