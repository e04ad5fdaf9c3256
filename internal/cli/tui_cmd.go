package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ravenfell/cradle/internal/tui"
)

func newTuiCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [module]",
		Short: "Run the entry module with a live record viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !supportsInteractiveOutput(cmd) {
				return fmt.Errorf("tui requires an interactive terminal")
			}

			doc, err := ctx.loadManifest()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				doc.Runtime.Module = args[0]
			}

			viewer := tui.New()
			viewerErr := make(chan error, 1)
			go func() {
				viewerErr <- viewer.Run(cmd.Context())
			}()

			code, runErr := runHarness(cmd.Context(), doc, viewer)
			viewer.Stop()
			if err := <-viewerErr; runErr == nil && err != nil {
				runErr = err
			}
			if runErr != nil {
				return runErr
			}
			ctx.exitCode = code
			return nil
		},
	}
	return cmd
}

func supportsInteractiveOutput(cmd *cobra.Command) bool {
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(out.Fd()))
}
