package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"github.com/matzehuels/tooltree/pkg/cache"
	"github.com/matzehuels/tooltree/pkg/core/frame"
	"github.com/matzehuels/tooltree/pkg/errors"
	pkgio "github.com/matzehuels/tooltree/pkg/io"
)

// Input is a loaded source table together with the content hash of its raw
// bytes. The hash keys the build cache; an empty hash disables caching.
type Input struct {
	Frame *frame.Frame
	Hash  string
}

// Load reads the source table named by opts.Input.
func Load(opts Options) (Input, error) {
	format := opts.InputFormat
	if format == "" {
		var err error
		if format, err = pkgio.DetectFormat(opts.Input); err != nil {
			return Input{}, err
		}
	}
	data, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s not found", opts.Input)
	}
	if err != nil {
		return Input{}, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes decodes an in-memory table in the given format.
func LoadBytes(data []byte, format string) (Input, error) {
	f, err := pkgio.Read(bytes.NewReader(data), format)
	if err != nil {
		return Input{}, err
	}
	return Input{Frame: f, Hash: cache.Hash(append([]byte(format+"\n"), data...))}, nil
}
