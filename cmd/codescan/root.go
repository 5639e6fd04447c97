package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for codescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codescan",
		Short: "Scan QR codes and barcodes with a camera or from images",
		Long: `codescan runs a scan attempt against a scanning capability and shows
the decoded content together with a trace of every step.

Each attempt checks that scanning is supported, checks camera permission,
requests it when it is not granted yet, scans once and reports the first
decoded record. By default the zbar tools (zbarcam, zbarimg) do the
decoding. The fixture driver answers from scenarios scripted in the
configuration file, which is useful for demos and CI.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and live trace output")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewDoctorCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
