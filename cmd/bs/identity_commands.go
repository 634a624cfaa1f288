package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phoniks/bs/internal/identity"
	"github.com/phoniks/bs/internal/logging"
)

func newIdentityCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage signing identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newIdentityNewCommand(ctx))
	cmd.AddCommand(newIdentityListCommand(ctx))
	return cmd
}

func newIdentityNewCommand(ctx *commandContext) *cobra.Command {
	var aliasFlag string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a fresh ed25519 identity",
		Long: "New generates an ed25519 keypair, seals the signing key under a " +
			"passphrase, and stores it in the identity directory under the given alias.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := identity.Open(cfg.Paths.IdentityDir, logger)
			if err != nil {
				return err
			}
			passphrase, err := readPassphrase("Passphrase for new identity: ", cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			id, err := store.Generate(aliasFlag, passphrase)
			if err != nil {
				return err
			}

			logging.NewComponentLogger(logger, "identity").Info("identity created", logging.Args(
				logging.String(logging.FieldIdentity, id.PKID),
				logging.String(logging.FieldAlias, aliasFlag),
			)...)
			fmt.Fprintln(cmd.OutOrStdout(), id.PKID)
			return nil
		},
	}

	cmd.Flags().StringVar(&aliasFlag, "alias", identity.DefaultAlias, "Alias for the new identity")
	return cmd
}

func newIdentityListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := identity.Open(cfg.Paths.IdentityDir, logger)
			if err != nil {
				return err
			}
			summaries, err := store.List()
			if err != nil {
				return err
			}

			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no identities (run \"bs identity new\")")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					summary.PKID,
					strings.Join(summary.Aliases, ", "),
					yesNo(summary.Private),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Identity", "Aliases", "Private"}, rows))
			return nil
		},
	}
}
