// Command pinmap-gen turns gpio/pinmap.yaml into the pin types of package gpio.
//
//	pinmap-gen --in pinmap.yaml --out pins_py32f030.go --test pins_py32f030_test.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"py32hal/cmd/pinmap-gen/generator"
)

var (
	inFile   string
	outFile  string
	testFile string

	rootCmd = &cobra.Command{
		Use:   "pinmap-gen",
		Short: "Generate GPIO pin types from a pin table",
		Long: "pinmap-gen reads a YAML table of alternate functions and writes one Go type per pin,\n" +
			"one method per (pin, role) pair and one interface per role, so illegal pin choices\n" +
			"fail to compile.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&inFile, "in", "i", "pinmap.yaml", "input pin table")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "", "output Go file (stdout if empty)")
	rootCmd.Flags().StringVar(&testFile, "test", "", "also write role predicates for tests to this file")
}

func run(cmd *cobra.Command, args []string) error {
	f, err := os.Open(inFile)
	if err != nil {
		return err
	}
	tab, err := generator.Load(f)
	f.Close()
	if err != nil {
		return err
	}

	source := filepath.Base(inFile)
	src, err := tab.Generate(source)
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}
	if outFile == "" {
		_, err = cmd.OutOrStdout().Write(src)
		return err
	}
	if err := os.WriteFile(outFile, src, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d pins, %d roles\n", outFile, len(tab.Pins()), len(tab.Roles()))

	if testFile != "" {
		test, err := tab.GenerateTest(source)
		if err != nil {
			return fmt.Errorf("format generated test: %w", err)
		}
		return os.WriteFile(testFile, test, 0o644)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
