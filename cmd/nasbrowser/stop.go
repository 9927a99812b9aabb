package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ning0612/nasbrowser/internal/config"
	"github.com/Ning0612/nasbrowser/internal/daemon"
)

func newStopCmd() *cobra.Command {
	var pidPath string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a server started with a PID file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("pid-file") {
				configPath, _ := cmd.Flags().GetString("config")
				cfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				pidPath = cfg.PIDFile
			}
			if pidPath == "" {
				return fmt.Errorf("no PID file configured; pass --pid-file or set pid_file")
			}

			pid, err := daemon.NewPIDFile(config.ExpandPath(pidPath)).Stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sent stop signal to nasbrowser (pid %d)\n", pid)
			return nil
		},
	}

	cmd.Flags().StringVar(&pidPath, "pid-file", "", "PID file written by serve (overrides config)")
	return cmd
}
