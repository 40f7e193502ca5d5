package rowsource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"slices"
	"strings"

	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/scalar"
)

// stderrTail caps how much collaborator stderr is carried in an ErrProcess.
const stderrTail = 4096

// ExecSource invokes the external query engine as a subprocess. The source
// identifier is appended to the configured arguments and the engine's
// stdout is decoded as row data.
type ExecSource struct {
	path string
	args []string
	rc   *resource.Controller
}

// NewExecSource creates a source running the engine binary at path with
// the given leading arguments.
func NewExecSource(path string, args ...string) *ExecSource {
	return &ExecSource{
		path: path,
		args: slices.Clone(args),
	}
}

// WithController sets a resource controller used to rate limit reading the
// engine's output.
func (s *ExecSource) WithController(rc *resource.Controller) *ExecSource {
	s.rc = rc
	return s
}

// Fetch runs the engine once and returns all rows it produced.
//
// A spawn failure or non-zero exit is reported as *ErrProcess (with the
// stderr tail); malformed stdout as *ErrDecode. When the process fails and
// its output is also malformed, the process failure wins.
func (s *ExecSource) Fetch(ctx context.Context, identifier string) ([]scalar.Row, error) {
	cmd := exec.CommandContext(ctx, s.path, append(slices.Clone(s.args), identifier)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ErrProcess{Cmd: s.path, ExitCode: -1, cause: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &ErrProcess{Cmd: s.path, ExitCode: -1, cause: err}
	}

	rows, decodeErr := DecodeRows(resource.NewRateLimitedReader(ctx, stdout, s.rc))
	if decodeErr != nil {
		// The decoder stops mid-stream on malformed output. Drain the rest
		// so the engine never blocks on a full pipe before Wait.
		_, _ = io.Copy(io.Discard, stdout)
	}

	if waitErr := cmd.Wait(); waitErr != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return nil, &ErrProcess{
			Cmd:      s.path,
			ExitCode: code,
			Stderr:   tail(stderr.String(), stderrTail),
			cause:    waitErr,
		}
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return rows, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
