package cmd

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/types"
)

// LibraryConfig is the optional TOML overlay extending the built-in library:
// extra operators with precedences and extern function signatures.
type LibraryConfig struct {
	Operators []OperatorConfig `toml:"operator"`
	Externs   []ExternConfig   `toml:"extern"`
}

// OperatorConfig declares one operator: its spelling, precedence, and the
// positions it may occupy.
type OperatorConfig struct {
	Name        string `toml:"name"`
	Precedence  int    `toml:"precedence"`
	Infix       bool   `toml:"infix"`
	UnaryPrefix bool   `toml:"unary_prefix"`
}

// ExternConfig declares one extern function signature.
type ExternConfig struct {
	Name     string       `toml:"name"`
	Overload string       `toml:"overload"`
	Params   []ParamEntry `toml:"params"`
	Return   string       `toml:"return"`
}

// ParamEntry is one formal parameter of an extern declaration.
type ParamEntry struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Ref  bool   `toml:"ref"`
}

// LoadLibraryConfig reads a TOML library configuration file.
func LoadLibraryConfig(path string) (*LibraryConfig, error) {
	var cfg LibraryConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "loading library config %s", path)
	}
	return &cfg, nil
}

// Apply registers the configured operators and externs into a namespace on
// top of the built-in library.
func (cfg *LibraryConfig) Apply(ns *ir.Namespace) error {
	for _, op := range cfg.Operators {
		h := ns.Strings.Pool(op.Name)
		if op.Infix {
			ns.Info.InfixOperators.Add(h)
		}
		if op.UnaryPrefix {
			ns.Info.UnaryPrefixes.Add(h)
		}
		if op.Precedence != 0 {
			ns.Info.Precedences[h] = op.Precedence
		}
	}

	for _, ext := range cfg.Externs {
		sig := types.NewFunctionSignature()
		for _, p := range ext.Params {
			t := ns.Types.LookupType(ns.Strings.Pool(p.Type))
			if t == types.Error {
				return errors.Errorf("extern %q parameter %q has unknown type %q", ext.Name, p.Name, p.Type)
			}
			sig.AddParameter(p.Name, t, p.Ref)
		}
		if ext.Return != "" {
			t := ns.Types.LookupType(ns.Strings.Pool(ext.Return))
			if t == types.Error {
				return errors.Errorf("extern %q has unknown return type %q", ext.Name, ext.Return)
			}
			sig.SetReturnType(t)
		}
		overload := ext.Overload
		if overload == "" {
			overload = ext.Name
		}
		ns.Functions.AddExtern(ns.Strings.Pool(ext.Name), ns.Strings.Pool(overload), sig)
	}
	return nil
}
