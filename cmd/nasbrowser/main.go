package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set by -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nasbrowser",
		Short: "Browse, download and upload files on a NAS over HTTP",
		Long: `nasbrowser serves one directory tree over HTTP.
Clients can list folders, download files, upload files, create folders and
delete entries. Every path is confined to the configured root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default: search ./config.yaml, ./configs, user config dir)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nasbrowser %s (%s)\n", version, commit)
		},
	}
}
