package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phoniks/bs/internal/hasher"
	"github.com/phoniks/bs/internal/logging"
	"github.com/phoniks/bs/internal/manifest"
	"github.com/phoniks/bs/internal/signing"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <manifest>",
		Short: "Check a manifest's signatures and re-hash its files",
		Long: "Verify parses a signed manifest, checks every attached signature, " +
			"re-digests the listed files, and reports per-file status. The exit code " +
			"is non-zero when any signature or file check fails.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log := logging.NewComponentLogger(logger, "verify")

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			doc, err := manifest.Parse(file)
			file.Close()
			if err != nil {
				return err
			}

			statuses, sigErr := signing.Verify(doc)

			roots := make([]string, 0, len(doc.Files))
			for _, entry := range doc.Files {
				roots = append(roots, entry.Path)
			}
			opts := []hasher.Option{hasher.WithLogger(logger)}
			if cfg.Engine.Workers > 0 {
				opts = append(opts, hasher.WithWorkers(cfg.Engine.Workers))
			}
			reporter := newProgressReporter(cfg.Output.Progress)
			if reporter != nil {
				opts = append(opts, hasher.WithProgress(reporter))
			}
			hashes, err := hasher.New(opts...).Run(cmd.Context(), roots)
			if err != nil {
				return err
			}

			fileStatuses := doc.Diff(hashes)

			out := cmd.OutOrStdout()
			sigRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := "ok"
				if status.Err != nil {
					detail = status.Err.Error()
				}
				sigRows = append(sigRows, []string{status.PKID, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Signer", "Signature"}, sigRows))

			failed := 0
			fileRows := make([][]string, 0, len(fileStatuses))
			for _, status := range fileStatuses {
				if status.State != manifest.StateOK {
					failed++
				}
				fileRows = append(fileRows, []string{status.Path, status.State.String()})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Status"}, fileRows))

			log.Info("manifest verified", logging.Args(
				logging.String(logging.FieldPath, args[0]),
				logging.Int(logging.FieldFileCount, len(fileStatuses)),
				logging.Int("failed", failed),
				logging.Bool("signatures_ok", sigErr == nil),
			)...)

			if sigErr != nil {
				return sigErr
			}
			if failed > 0 {
				return errors.New(pluralize(failed, "file check failed", "file checks failed"))
			}
			fmt.Fprintln(out, "manifest ok")
			return nil
		},
	}

	return cmd
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
