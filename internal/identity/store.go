package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"github.com/phoniks/bs/internal/fileutil"
	"github.com/phoniks/bs/internal/logging"
	"github.com/phoniks/bs/internal/sigil"
)

const (
	idsDirName    = "ids"
	aliasFileName = "aliases.json"
	lockFileName  = ".lock"

	// DefaultAlias is the identity used when the caller names none.
	DefaultAlias = "default"
)

var (
	// ErrNotFound reports a pkid or alias with no identity document.
	ErrNotFound = errors.New("identity not found")
	// ErrNoSigningKey reports a public identity asked to sign.
	ErrNoSigningKey = errors.New("identity has no signing key")
	// ErrPassphrase reports a key box that failed to open.
	ErrPassphrase = errors.New("signing key decryption failed (wrong passphrase?)")
	// ErrAliasExists reports a keygen alias already mapped to an identity.
	ErrAliasExists = errors.New("alias already in use")
)

// Store is an identity directory rooted at a configured path. Opening the
// store initializes the directory layout if it does not exist yet.
type Store struct {
	root   string
	logger *slog.Logger
}

// Open opens or initializes the identity directory at root.
func Open(root string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("identity directory not configured")
	}
	if err := os.MkdirAll(filepath.Join(root, idsDirName), 0o700); err != nil {
		return nil, fmt.Errorf("initialize identity directory: %w", err)
	}
	return &Store{root: root, logger: logging.NewComponentLogger(logger, "identity")}, nil
}

// Root returns the directory the store operates on.
func (s *Store) Root() string { return s.root }

// Resolve maps a name to a pkid: an empty name means the default alias, a
// known alias dereferences to its pkid, and anything else is treated as a
// literal pkid.
func (s *Store) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultAlias
	}
	aliases, err := s.readAliases()
	if err != nil {
		return "", err
	}
	if pkid, ok := aliases[name]; ok {
		return pkid, nil
	}
	return name, nil
}

// Load reads the identity document for pkid. The pkid must parse as a verify
// key sigil before it is used to build a file path, so caller-supplied names
// cannot address files outside the store.
func (s *Store) Load(pkid string) (*Identity, error) {
	verifyKey, err := sigil.ParseVerifyKey(pkid)
	if err != nil {
		return nil, fmt.Errorf("identity %s: %w", pkid, err)
	}

	data, err := os.ReadFile(s.identityPath(pkid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, pkid)
		}
		return nil, fmt.Errorf("read identity %s: %w", pkid, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse identity %s: %w", pkid, err)
	}

	return &Identity{
		PKID:      pkid,
		VerifyKey: verifyKey,
		keyBox:    doc.Secrets.SigningKey,
	}, nil
}

// Summary describes one stored identity for listings.
type Summary struct {
	PKID    string
	Aliases []string
	Private bool
}

// List enumerates every identity in the store, alias-annotated, sorted by
// pkid.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, idsDirName))
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	aliases, err := s.readAliases()
	if err != nil {
		return nil, err
	}
	byPKID := make(map[string][]string, len(aliases))
	for alias, pkid := range aliases {
		byPKID[pkid] = append(byPKID[pkid], alias)
	}

	var summaries []Summary
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || entry.IsDir() {
			continue
		}
		id, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		names := byPKID[name]
		sort.Strings(names)
		summaries = append(summaries, Summary{
			PKID:    name,
			Aliases: names,
			Private: id.HasSigningKey(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].PKID < summaries[j].PKID })
	return summaries, nil
}

// Generate creates a fresh ed25519 identity, seals its signing key under the
// passphrase, and registers the alias. The write happens under the store's
// file lock.
func (s *Store) Generate(alias string, passphrase []byte) (*Identity, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		alias = DefaultAlias
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	keyBox, err := sealKeyBox(priv, passphrase)
	if err != nil {
		return nil, err
	}

	pkid := sigil.FormatVerifyKey(pub)
	doc := document{}
	doc.Secrets.SigningKey = keyBox
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode identity document: %w", err)
	}

	err = s.withLock(func() error {
		aliases, err := s.readAliases()
		if err != nil {
			return err
		}
		if _, ok := aliases[alias]; ok {
			return fmt.Errorf("%w: %s", ErrAliasExists, alias)
		}
		if err := fileutil.WriteFileAtomic(s.identityPath(pkid), data, 0o600); err != nil {
			return fmt.Errorf("write identity document: %w", err)
		}
		aliases[alias] = pkid
		return s.writeAliases(aliases)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("identity generated",
		logging.String(logging.FieldIdentity, pkid),
		logging.String(logging.FieldAlias, alias))

	return &Identity{PKID: pkid, VerifyKey: pub, keyBox: keyBox}, nil
}

func (s *Store) identityPath(pkid string) string {
	return filepath.Join(s.root, idsDirName, pkid+".json")
}

func (s *Store) readAliases() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, aliasFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	aliases := map[string]string{}
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	return aliases, nil
}

func (s *Store) writeAliases(aliases map[string]string) error {
	data, err := json.MarshalIndent(aliases, "", "  ")
	if err != nil {
		return fmt.Errorf("encode aliases: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(s.root, aliasFileName), data, 0o600); err != nil {
		return fmt.Errorf("write aliases: %w", err)
	}
	return nil
}

func (s *Store) withLock(fn func() error) error {
	lock := flock.New(filepath.Join(s.root, lockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock identity directory: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// document is the identity file's JSON shape. Public fields may grow; the
// secrets block is absent for public identities.
type document struct {
	Secrets struct {
		SigningKey string `json:"signing_key,omitempty"`
	} `json:"secrets,omitzero"`
}

// Identity is one loaded identity. The signing key stays sealed until Unlock.
type Identity struct {
	PKID      string
	VerifyKey ed25519.PublicKey

	keyBox string
}

// HasSigningKey reports whether this identity can sign after an unlock.
func (id *Identity) HasSigningKey() bool { return id.keyBox != "" }

// Unlock opens the identity's key box with the passphrase and returns the
// signing key.
func (id *Identity) Unlock(passphrase []byte) (ed25519.PrivateKey, error) {
	if !id.HasSigningKey() {
		return nil, fmt.Errorf("%w: %s", ErrNoSigningKey, id.PKID)
	}
	priv, err := openKeyBox(id.keyBox, passphrase)
	if err != nil {
		return nil, err
	}
	if !id.VerifyKey.Equal(priv.Public()) {
		return nil, fmt.Errorf("identity %s: signing key does not match verify key", id.PKID)
	}
	return priv, nil
}
