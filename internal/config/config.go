// Package config holds the compiler's Configuration record: the
// immutable set of runtime-library names the transform passes emit
// references to instead of hard-coding. The record is usually
// constructed programmatically by the host driver; LoadFile reads the
// optional `erc.config.yaml` on-disk form.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ListTypeConfiguration names the collaborator functions the list-literal
// lowering pass and list-type coercion pass (step 7)
// emit calls to.
type ListTypeConfiguration struct {
	Empty        string `yaml:"empty"`
	Concatenate  string `yaml:"concatenate"`
	Equal        string `yaml:"equal"`
	Prepend      string `yaml:"prepend"`
	Map          string `yaml:"map"`
	ListTypeName string `yaml:"list_type_name"`
}

// ErrorTypeConfiguration names the union member that let-error lowering
// treats as "the error type".
type ErrorTypeConfiguration struct {
	ErrorTypeName string `yaml:"error_type_name"`
}

// StringTypeConfiguration names the built-in String type as the
// collaborator spells it. It is loaded and carried with the
// configuration; no pass reads it.
type StringTypeConfiguration struct {
	StringTypeName string `yaml:"string_type_name"`
}

// MainModuleConfiguration names the module treated as the program entry
// point and the function within it that must be defined there.
type MainModuleConfiguration struct {
	ModulePath   string `yaml:"module_path"`
	FunctionName string `yaml:"function_name"`
}

// Configuration is the full immutable record the pipeline is handed.
type Configuration struct {
	ListType     ListTypeConfiguration   `yaml:"list_type_configuration"`
	ErrorType    ErrorTypeConfiguration  `yaml:"error_type_configuration"`
	StringType   StringTypeConfiguration `yaml:"string_type_configuration"`
	MainModule   MainModuleConfiguration `yaml:"main_module_configuration"`
	Builtins     map[string]string       `yaml:"builtin_configuration"`
	MallocFunc   string                  `yaml:"malloc_function_name"`
	ReallocFunc  string                  `yaml:"realloc_function_name"`
	IsMainModule bool                    `yaml:"-"`
}

// Default returns the configuration the CLI driver constructs when no
// `erc.config.yaml` is present: the erc runtime library's own names.
func Default() *Configuration {
	return &Configuration{
		ListType: ListTypeConfiguration{
			Empty:        "erc_runtime.list.empty",
			Concatenate:  "erc_runtime.list.concatenate",
			Equal:        "erc_runtime.list.equal",
			Prepend:      "erc_runtime.list.prepend",
			Map:          "erc_runtime.list.map",
			ListTypeName: "erc_runtime.list.List",
		},
		ErrorType: ErrorTypeConfiguration{
			ErrorTypeName: "erc_runtime.error.Error",
		},
		StringType: StringTypeConfiguration{
			StringTypeName: "erc_runtime.string.String",
		},
		MainModule: MainModuleConfiguration{
			ModulePath:   "Main",
			FunctionName: "main",
		},
		Builtins:    map[string]string{},
		MallocFunc:  "erc_malloc",
		ReallocFunc: "erc_realloc",
	}
}

// LoadFile reads an `erc.config.yaml` file and merges it over
// Default().
func LoadFile(path string) (*Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every name a pass will actually need to emit is
// non-empty, failing fast at load time rather than deep inside a
// transform pass.
func (c *Configuration) Validate() error {
	switch {
	case c.ListType.Empty == "":
		return fmt.Errorf("config: list_type_configuration.empty is required")
	case c.ListType.Concatenate == "":
		return fmt.Errorf("config: list_type_configuration.concatenate is required")
	case c.ListType.Equal == "":
		return fmt.Errorf("config: list_type_configuration.equal is required")
	case c.ListType.Prepend == "":
		return fmt.Errorf("config: list_type_configuration.prepend is required")
	case c.ListType.Map == "":
		return fmt.Errorf("config: list_type_configuration.map is required")
	case c.ErrorType.ErrorTypeName == "":
		return fmt.Errorf("config: error_type_configuration.error_type_name is required")
	case c.MallocFunc == "":
		return fmt.Errorf("config: malloc_function_name is required")
	case c.ReallocFunc == "":
		return fmt.Errorf("config: realloc_function_name is required")
	}
	return nil
}
