package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ravenfell/cradle/internal/sigctl"
)

func newSignalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal <number>",
		Short: "Deliver a signal to the current process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := parseSignal(args[0])
			if err != nil {
				return err
			}
			return sigctl.Send(sig)
		},
	}
	return cmd
}

func newUnblockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unblock <number>",
		Short: "Remove a signal from the calling thread's blocked set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := parseSignal(args[0])
			if err != nil {
				return err
			}
			return sigctl.Unblock(sig)
		},
	}
	return cmd
}

func parseSignal(value string) (int, error) {
	sig, err := strconv.Atoi(value)
	if err != nil || sig < 1 {
		return 0, fmt.Errorf("invalid signal %q", value)
	}
	return sig, nil
}
