package mineru

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/tom832/MinerU/internal/observability"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *observability.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	r.logger.Debug().Str("cmd_line", strings.Join(append([]string{name}, args...), " ")).Msg("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.logger.Error().
			Str("cmd", name).
			Int64("duration_ms", dur.Milliseconds()).
			Err(err).
			Str("stderr", truncate(errb.String(), 8<<10)).
			Msg("exec failed")
	} else {
		r.logger.Debug().
			Str("cmd", name).
			Int64("duration_ms", dur.Milliseconds()).
			Int("stdout_bytes", out.Len()).
			Int("stderr_bytes", errb.Len()).
			Msg("exec ok")
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
