package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the meshkeygen command around r.
func NewRootCommand(r *Runner) *cobra.Command {
	var (
		p    SearchParams
		wipe bool
	)

	cmd := &cobra.Command{
		Use:   "meshkeygen [PATTERN]",
		Short: r.Msg.AppShort,
		Long:  r.Msg.AppLong,
		Example: `  meshkeygen BEEF
  meshkeygen 00ABC -n 5
  meshkeygen CAFE --max-keys 0 --workers 4
  meshkeygen --delete`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wipe {
				return r.Delete(cmd.Context())
			}
			if len(args) == 0 {
				return errors.New(r.Msg.PatternRequired)
			}
			p.Pattern = args[0]
			return r.Search(cmd.Context(), p)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&p.MaxKeys, "max-keys", "n", 1, r.Msg.FlagMaxKeys)
	f.IntVarP(&p.Workers, "workers", "w", 0, r.Msg.FlagWorkers)
	f.BoolVar(&p.NoBench, "no-bench", false, r.Msg.FlagNoBench)
	f.BoolVarP(&wipe, "delete", "d", false, r.Msg.FlagDelete)

	cmd.SetOut(r.Out)
	return cmd
}
