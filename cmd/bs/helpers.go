package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phoniks/bs/internal/fileutil"
	"github.com/phoniks/bs/internal/history"
	"github.com/phoniks/bs/internal/logging"
)

// EnvPassphrase supplies the signing key passphrase non-interactively.
const EnvPassphrase = "BS_PASSPHRASE"

// readPassphrase resolves the key box passphrase: the BS_PASSPHRASE
// environment variable wins, then an echo-free terminal prompt, then a plain
// line read for piped stdin.
func readPassphrase(prompt string, in io.Reader, errOut io.Writer) ([]byte, error) {
	if value, ok := os.LookupEnv(EnvPassphrase); ok {
		return []byte(value), nil
	}

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(errOut, prompt)
		passphrase, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(errOut)
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		return passphrase, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errors.New("passphrase required (set " + EnvPassphrase + " or provide it on stdin)")
	}
	return []byte(line), nil
}

func writeManifest(path string, rendered []byte) error {
	if err := fileutil.WriteFileAtomic(path, rendered, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// recordRun appends the signing run to the history database. The manifest is
// already emitted by the time this runs, so a history failure is logged
// rather than turned into a command failure.
func recordRun(cmd *cobra.Command, dbPath string, entry history.Entry, log *slog.Logger) error {
	store, err := history.Open(dbPath)
	if err != nil {
		log.Warn("history unavailable", logging.Args(logging.Error(err))...)
		return nil
	}
	defer store.Close()

	if _, err := store.Record(cmd.Context(), entry); err != nil {
		log.Warn("history record failed", logging.Args(logging.Error(err))...)
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
