package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andywolf/release-drafter/internal/version"
)

func newVersionCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the release-drafter build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout(), version.Current(), full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include commit, build date and platform on separate lines")
	return cmd
}

func printVersion(w io.Writer, b version.Build, full bool) error {
	out := b.Info()
	if full {
		out = b.Full()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
