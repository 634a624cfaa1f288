package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/phoniks/bs/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded signing runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no signing runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				output := entry.OutputPath
				if output == "" {
					output = "(stdout)"
				}
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format(time.DateTime),
					entry.PKID,
					strconv.Itoa(entry.FileCount),
					output,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"When", "Identity", "Files", "Output"}, rows, 3))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum runs to show (0 shows all)")
	return cmd
}
