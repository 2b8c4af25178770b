package pipeline

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tooltree/pkg/errors"
)

// DefaultConfigFile is read by the CLI when present in the working
// directory.
const DefaultConfigFile = "tooltree.toml"

// LoadConfig reads pipeline options from a TOML file. A relative input path
// in the file is resolved against the file's directory.
//
// Example:
//
//	input  = "costs.csv"
//	levels = ["team", "service"]
//	metric = "cost"
//
//	[root_limits]
//	max_children = 10
//
//	[colors]
//	column = "latency"
//	agg    = "mean"
func LoadConfig(path string) (Options, error) {
	var opts Options
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return opts, err
	}
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
	}
	if opts.Input != "" && !filepath.IsAbs(opts.Input) {
		opts.Input = filepath.Join(filepath.Dir(path), opts.Input)
	}
	return opts, nil
}
