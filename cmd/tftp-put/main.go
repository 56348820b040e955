package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Merith-TK/tftpd/internal/client"
	"github.com/Merith-TK/tftpd/internal/tftp"
)

var (
	timeout string
	retries int
)

var rootCmd = &cobra.Command{
	Use:   "tftp-put <host[:port]> <local-file> [remote-file]",
	Short: "Upload a file to a TFTP server",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&timeout, "timeout", "3s", "Per-block retransmit timeout")
	rootCmd.Flags().IntVar(&retries, "retries", 5, "Max retransmits before giving up")
}

func run(cmd *cobra.Command, args []string) error {
	server, err := client.ResolveServer(args[0])
	if err != nil {
		return err
	}
	localFile := args[1]
	remoteFile := localFile
	if len(args) == 3 {
		remoteFile = args[2]
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("invalid --timeout: %w", err)
	}

	cfg := tftp.RetransmitConfig{Timeout: d, MaxRetries: retries}
	if err := client.Put(server, localFile, remoteFile, cfg); err != nil {
		return err
	}
	fmt.Printf("uploaded %s -> %s\n", localFile, remoteFile)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
