package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ravenfell/cradle/internal/sigctl"
)

func newKillThreadCmd(ctx *context) *cobra.Command {
	var sig int
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "kill-thread <tid>",
		Short: "Forcibly terminate one OS thread of this process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := strconv.Atoi(args[0])
			if err != nil || tid <= 0 {
				return fmt.Errorf("invalid thread id %q", args[0])
			}
			sig, grace, err := resolveKillSettings(cmd, ctx, sig, grace)
			if err != nil {
				return err
			}
			t := sigctl.Terminator{
				Signal: sig,
				Grace:  grace,
				Warnf: func(format string, warnArgs ...any) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", warnArgs...)
				},
			}
			return t.Kill(tid)
		},
	}
	cmd.Flags().IntVar(&sig, "signal", 0, "Reserved termination signal (0 selects the manifest setting or the default)")
	cmd.Flags().DurationVar(&grace, "grace", 0, "Delay before the liveness probe (0 selects the manifest setting or the default)")
	return cmd
}

// resolveKillSettings layers the manifest's kill section under the command's
// flags: an explicit flag wins, then the manifest, then the terminator's own
// defaults. A missing default manifest is not an error, but a manifest named
// via --file must load.
func resolveKillSettings(cmd *cobra.Command, ctx *context, sig int, grace time.Duration) (int, time.Duration, error) {
	doc, err := ctx.loadManifest()
	if err != nil {
		if flag := cmd.Flag("file"); flag != nil && flag.Changed {
			return 0, 0, err
		}
		return sig, grace, nil
	}
	if !cmd.Flags().Changed("signal") && doc.Kill.Signal != 0 {
		sig = doc.Kill.Signal
	}
	if !cmd.Flags().Changed("grace") && doc.Kill.Grace.IsSet() {
		grace = doc.Kill.Grace.Duration
	}
	return sig, grace, nil
}
