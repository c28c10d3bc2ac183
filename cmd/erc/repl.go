package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	ercerrors "github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/pipeline"
)

// replCmd is an interactive inspection shell over a compiled module:
// browse definitions, their types, and their lowered core bodies. It
// compiles the demo module on startup; a host embedding the pipeline can
// provide its own modules the same way.
func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively inspect a compiled module",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// A capturing generator keeps the lowered module around so
			// :core can show definition bodies.
			capture := &captureGenerator{}
			_, moduleIface, err := pipeline.Compile(pipeline.DemoModule(), cfg, pipeline.Options{Generator: capture})
			if err != nil {
				return err
			}

			runREPL(moduleIface, capture.module)
			return nil
		},
	}
}

type captureGenerator struct {
	module *ast.Module
}

func (g *captureGenerator) Generate(m *ast.Module, iface *ast.ModuleInterface, cfg *config.Configuration) ([]byte, error) {
	g.module = m
	return nil, nil
}

func runREPL(moduleIface *ast.ModuleInterface, core *ast.Module) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(os.TempDir(), ".erc_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s module %s loaded; :help for commands\n", green("erc"), bold(core.Path))

	for {
		input, err := line.Prompt("erc> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		cmd, arg := input, ""
		if i := strings.IndexByte(input, ' '); i >= 0 {
			cmd, arg = input[:i], strings.TrimSpace(input[i+1:])
		}

		switch cmd {
		case ":help":
			fmt.Println("  :names          list definitions")
			fmt.Println("  :type NAME      show a definition's type")
			fmt.Println("  :core NAME      show a definition's lowered body")
			fmt.Println("  :exports        list the module interface")
			fmt.Println("  :quit           exit")
		case ":quit", ":q":
			return
		case ":names":
			for _, d := range core.Definitions {
				fmt.Printf("  %s\n", d.Name)
			}
		case ":exports":
			for _, d := range moduleIface.Definitions {
				fmt.Printf("  %s : %s\n", d.Name, d.Type.String())
			}
		case ":type":
			if d := findDefinition(core, arg); d != nil && d.Type != nil {
				fmt.Printf("  %s : %s\n", d.Name, d.Type.String())
			} else {
				fmt.Fprintf(os.Stderr, "%s %s\n", red("unknown name:"), arg)
			}
		case ":core":
			if d := findDefinition(core, arg); d != nil {
				fmt.Printf("  %s\n", ast.Print(d.Body))
			} else {
				fmt.Fprintf(os.Stderr, "%s %s\n", red("unknown name:"), arg)
			}
		case ":codes":
			for _, info := range ercerrors.SortedRegistry() {
				fmt.Printf("  %s %s\n", cyan(info.Code), info.Description)
			}
		default:
			fmt.Fprintf(os.Stderr, "%s %s (try :help)\n", red("unknown command:"), cmd)
		}
	}
}

func findDefinition(m *ast.Module, name string) *ast.Definition {
	for _, d := range m.Definitions {
		if d.Name == name {
			return d
		}
	}
	return nil
}
