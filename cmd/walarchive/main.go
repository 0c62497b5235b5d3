package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	debug           bool
	metricsTextfile string
	timeout         time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "walarchive",
	Short: "walarchive - PostgreSQL WAL archive and restore",
	Long: `walarchive ships WAL segments to object storage and brings them back.
Use it as archive_command and restore_command, and as a retention tool:

  archive_command = 'walarchive archive %p %f'
  restore_command = 'walarchive restore %f %p'`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write metrics to this file after the command (node_exporter textfile format)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort the command after this long (0 disables)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
