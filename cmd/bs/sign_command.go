package main

import (
	"crypto/sha512"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/phoniks/bs/internal/hasher"
	"github.com/phoniks/bs/internal/history"
	"github.com/phoniks/bs/internal/identity"
	"github.com/phoniks/bs/internal/logging"
	"github.com/phoniks/bs/internal/manifest"
	"github.com/phoniks/bs/internal/sigil"
	"github.com/phoniks/bs/internal/signing"
)

func newSignCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var idFlag string

	cmd := &cobra.Command{
		Use:   "sign [flags] <path>...",
		Short: "Hash the given paths and emit a signed manifest",
		Long: "Sign walks the given files and directories, digests every regular file, " +
			"and writes a manifest signed by the selected identity. Without --output the " +
			"manifest goes to stdout.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log := logging.NewComponentLogger(logger, "sign")

			store, err := identity.Open(cfg.Paths.IdentityDir, logger)
			if err != nil {
				return err
			}
			pkid, err := store.Resolve(idFlag)
			if err != nil {
				return err
			}
			id, err := store.Load(pkid)
			if err != nil {
				return err
			}
			passphrase, err := readPassphrase("Passphrase: ", cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			priv, err := id.Unlock(passphrase)
			if err != nil {
				return err
			}

			started := time.Now()
			opts := []hasher.Option{hasher.WithLogger(logger)}
			if cfg.Engine.Workers > 0 {
				opts = append(opts, hasher.WithWorkers(cfg.Engine.Workers))
			}
			reporter := newProgressReporter(cfg.Output.Progress)
			if reporter != nil {
				opts = append(opts, hasher.WithProgress(reporter))
			}

			hashes, err := hasher.New(opts...).Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			sort.Slice(hashes, func(i, j int) bool { return hashes[i].Path < hashes[j].Path })

			doc := manifest.Build(hashes)
			if err := signing.Sign(doc, priv); err != nil {
				return err
			}
			rendered := doc.Render()

			if outputFlag == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
			} else {
				if err := writeManifest(outputFlag, rendered); err != nil {
					return err
				}
			}

			log.Info("manifest signed", logging.Args(
				logging.String(logging.FieldIdentity, id.PKID),
				logging.Int(logging.FieldRootCount, len(args)),
				logging.Int(logging.FieldFileCount, len(hashes)),
				logging.String(logging.FieldOutput, outputFlag),
				logging.Duration(logging.FieldDuration, time.Since(started)),
			)...)

			return recordRun(cmd, cfg.Paths.HistoryDB, history.Entry{
				PKID:           id.PKID,
				FileCount:      len(hashes),
				ManifestDigest: sigil.FormatDigest(sha512.Sum512_256(rendered)),
				OutputPath:     outputFlag,
			}, log)
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the manifest to this file instead of stdout")
	cmd.Flags().StringVar(&idFlag, "id", identity.DefaultAlias, "Signing identity alias or pkid")

	return cmd
}
