package cli

import (
	stdcontext "context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ravenfell/cradle/internal/config"
	"github.com/ravenfell/cradle/internal/launcher"
	"github.com/ravenfell/cradle/internal/redirect"
	"github.com/ravenfell/cradle/internal/sink"
)

func newRunCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [module]",
		Short: "Redirect stdio into the log sink and run the runtime entry module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.loadManifest()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				doc.Runtime.Module = args[0]
			}

			dest, closeDest, err := openRecordDestination(doc)
			if err != nil {
				return err
			}
			defer closeDest()

			code, err := runHarness(cmd.Context(), doc, sink.NewJSONWriter(dest))
			if err != nil {
				return err
			}
			ctx.exitCode = code
			return nil
		},
	}
	return cmd
}

// openRecordDestination picks where forwarded records land. Without a
// configured path the records go to a duplicate of the original stderr taken
// before redirection; writing them to the live descriptor would feed the sink
// its own output.
func openRecordDestination(doc *config.Manifest) (io.Writer, func(), error) {
	if doc.Logging.Path != "" {
		f, err := os.OpenFile(doc.Logging.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log destination: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	orig, err := redirect.KeepOriginal(int(os.Stderr.Fd()))
	if err != nil {
		return nil, nil, err
	}
	return orig, func() { _ = orig.Close() }, nil
}

// runHarness wires the capture pipeline and runs the embedded runtime: mux
// between the reader threads and the destination sink, redirect both
// streams, then run the entry module with the redirected descriptors
// inherited.
func runHarness(ctx stdcontext.Context, doc *config.Manifest, dest sink.Sink) (int, error) {
	mux := sink.NewMux(doc.Logging.Buffer)
	go func() {
		for rec := range mux.Output() {
			dest.Write(rec)
		}
	}()

	stdoutSev, err := sink.ParseSeverity(doc.Streams.Stdout.Severity)
	if err != nil {
		return 0, err
	}
	stderrSev, err := sink.ParseSeverity(doc.Streams.Stderr.Severity)
	if err != nil {
		return 0, err
	}

	red := redirect.New(mux,
		redirect.WithStdout(doc.Streams.Stdout.Tag, stdoutSev),
		redirect.WithStderr(doc.Streams.Stderr.Tag, stderrSev),
	)
	if err := red.RedirectAll(); err != nil {
		return 0, err
	}

	return launcher.New().Run(ctx, launcher.Spec{
		Home:     doc.Runtime.Home,
		Module:   doc.Runtime.Module,
		Command:  doc.Runtime.Command,
		Env:      doc.Runtime.Env,
		Dir:      doc.Harness.Workdir,
		Isolated: doc.Runtime.IsolatedEnabled(),
	})
}
