// Command py32-echo checks a board running the USART echo firmware.
//
//	py32-echo --device /dev/ttyUSB0 --count 100 --size 64
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"py32hal/host/echo"
	"py32hal/host/serial"
)

var (
	device    string
	baud      int
	count     int
	size      int
	timeout   time.Duration
	keepGoing bool
	verbose   bool

	rootCmd = &cobra.Command{
		Use:          "py32-echo",
		Short:        "Verify the USART echo firmware over a serial port",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&device, "device", "d", "/dev/ttyUSB0", "serial device path")
	rootCmd.Flags().IntVarP(&baud, "baud", "b", 115200, "baud rate")
	rootCmd.Flags().IntVarP(&count, "count", "n", 10, "frames to send")
	rootCmd.Flags().IntVarP(&size, "size", "s", 64, "bytes per frame")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 500*time.Millisecond, "give up on a frame after this long without data")
	rootCmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "continue after a failed frame")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every frame")
}

func run(cmd *cobra.Command, args []string) error {
	if count <= 0 || size <= 0 {
		return fmt.Errorf("count and size must be positive")
	}
	cfg := serial.DefaultConfig(device)
	cfg.Baud = baud
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", device, err)
	}

	out := cmd.OutOrStdout()
	report := func(i int, res echo.Result, err error) {
		switch {
		case err != nil:
			fmt.Fprintf(out, "frame %d: %v\n", i, err)
		case verbose:
			fmt.Fprintf(out, "frame %d: %d bytes in %v\n", i, res.Received, res.Elapsed)
		}
	}
	st, err := echo.Run(port, count, size, timeout, keepGoing, report)
	fmt.Fprintf(out, "%d/%d frames ok, %d bytes, %.0f B/s\n",
		st.Frames-st.Failed, st.Frames, st.Bytes, st.BytesPerSecond())
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
