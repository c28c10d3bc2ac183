package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sunholo/erc/internal/config"
	ercerrors "github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/pipeline"
)

var (
	// Version info - set by ldflags during build
	Version = "dev"

	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

var (
	configPath string
	jsonErrors bool
)

func main() {
	root := &cobra.Command{
		Use:           "erc",
		Short:         "erc compiles typed expression modules to core IR",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an erc.config.yaml")
	root.PersistentFlags().BoolVar(&jsonErrors, "json", false, "emit diagnostics as JSON")

	root.AddCommand(compileCmd(), checkCmd(), dumpCoreCmd(), codesCmd(), replCmd())

	if err := root.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Configuration, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(configPath)
}

func compileCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the built-in demo module and write the generated bytes",
		Long: "Compile runs the full pipeline over the built-in demo module.\n" +
			"Host front-ends construct modules programmatically and call the\n" +
			"pipeline package directly; this command demonstrates the same path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			bytes, moduleIface, err := pipeline.Compile(pipeline.DemoModule(), cfg, pipeline.Options{})
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, bytes, 0o644); err != nil {
				return err
			}
			fmt.Printf("%s compiled %s (%d bytes, %d exported names)\n",
				green("OK"), bold(moduleIface.Path), len(bytes), len(moduleIface.Definitions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "demo.core", "output file")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Type-check the demo module without writing output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, _, err := pipeline.Compile(pipeline.DemoModule(), cfg, pipeline.Options{}); err != nil {
				return err
			}
			fmt.Printf("%s no type errors\n", green("OK"))
			return nil
		},
	}
}

func dumpCoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-core",
		Short: "Print the fully lowered core IR of the demo module",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			bytes, _, err := pipeline.Compile(pipeline.DemoModule(), cfg, pipeline.Options{})
			if err != nil {
				return err
			}
			os.Stdout.Write(bytes)
			return nil
		},
	}
}

func codesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the diagnostic codes the compiler can raise",
		Run: func(cmd *cobra.Command, args []string) {
			for _, info := range ercerrors.SortedRegistry() {
				fmt.Printf("%s  %-10s %s\n", cyan(info.Code), info.Phase, info.Description)
			}
		},
	}
}

func reportError(err error) {
	var ce *ercerrors.CompileError
	if asCompileError(err, &ce) {
		if jsonErrors {
			if s, jerr := ercerrors.Encode(ce).MarshalJSONString(); jerr == nil {
				fmt.Fprintln(os.Stderr, s)
				return
			}
		}
		fmt.Fprint(os.Stderr, ercerrors.Report(ce, ""))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
}

func asCompileError(err error, target **ercerrors.CompileError) bool {
	ce, ok := err.(*ercerrors.CompileError)
	if ok {
		*target = ce
	}
	return ok
}
