package testsupport

import (
	"testing"

	"github.com/phoniks/bs/internal/config"
	"github.com/phoniks/bs/internal/identity"
	"github.com/phoniks/bs/internal/logging"
)

// TestPassphrase unlocks every identity created by NewIdentity.
const TestPassphrase = "correct horse"

// NewIdentity generates an identity under the config's identity directory
// with weakened key derivation parameters, registered under alias.
func NewIdentity(t testing.TB, cfg *config.Config, alias string) *identity.Identity {
	t.Helper()

	t.Cleanup(identity.SetKDFForTests())
	store, err := identity.Open(cfg.Paths.IdentityDir, logging.NewNop())
	if err != nil {
		t.Fatalf("open identity store: %v", err)
	}
	id, err := store.Generate(alias, []byte(TestPassphrase))
	if err != nil {
		t.Fatalf("generate identity: %v", err)
	}
	return id
}
