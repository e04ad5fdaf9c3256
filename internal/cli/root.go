package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ravenfell/cradle/internal/config"
)

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	var manifestPath string

	root := &cobra.Command{
		Use:   "cradle",
		Short: "Native harness for an embedded scripting runtime",
	}

	root.PersistentFlags().
		StringVarP(&manifestPath, "file", "f", "harness.yaml", "Path to harness manifest")

	ctx := &context{manifestPath: &manifestPath}
	root.AddCommand(newRunCmd(ctx))
	root.AddCommand(newTuiCmd(ctx))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newKillThreadCmd(ctx))
	root.AddCommand(newSignalCmd())
	root.AddCommand(newUnblockCmd())

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint. The embedded runtime's exit code becomes
// the harness's own exit code.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cliCtx := newRootCommand()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
	stop()
	if cliCtx.exitCode != 0 {
		os.Exit(cliCtx.exitCode)
	}
}

type context struct {
	manifestPath *string
	exitCode     int
}

func (c *context) loadManifest() (*config.Manifest, error) {
	return config.Load(*c.manifestPath)
}
