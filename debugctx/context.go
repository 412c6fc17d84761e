package debugctx

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

type enabledKey struct{}
type writerKey struct{}

func WithEnabled(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, enabledKey{}, enabled)
}

func Enabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	enabled, _ := ctx.Value(enabledKey{}).(bool)
	return enabled
}

func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	if writer == nil {
		return ctx
	}

	return context.WithValue(ctx, writerKey{}, writer)
}

func Writer(ctx context.Context) io.Writer {
	if ctx == nil {
		return nil
	}

	writer, _ := ctx.Value(writerKey{}).(io.Writer)
	return writer
}

// NewLogger returns a logr.Logger writing "debug: " prefixed lines to writer.
// Verbosity 1 is emitted only when verbose is set.
func NewLogger(writer io.Writer, verbose bool) logr.Logger {
	if writer == nil {
		return logr.Discard()
	}

	verbosity := 0
	if verbose {
		verbosity = 1
	}
	var mu sync.Mutex
	return funcr.New(func(prefix string, args string) {
		line := strings.TrimSpace(prefix + " " + args)
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(writer, "debug: %s\n", line)
	}, funcr.Options{Verbosity: verbosity})
}

// WithLogger installs the debug logger derived from the enabled flag and
// writer already stored in ctx.
func WithLogger(ctx context.Context) context.Context {
	return logr.NewContext(ctx, NewLogger(Writer(ctx), Enabled(ctx)))
}

// Logger returns the context logger, or a discarding one.
func Logger(ctx context.Context) logr.Logger {
	if ctx == nil {
		return logr.Discard()
	}
	return logr.FromContextOrDiscard(ctx)
}

func Printf(ctx context.Context, format string, args ...any) {
	if !Enabled(ctx) {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	if logger, err := logr.FromContext(ctx); err == nil {
		logger.V(1).Info(message)
		return
	}

	writer := Writer(ctx)
	if writer == nil {
		return
	}
	_, _ = fmt.Fprintf(writer, "debug: %s\n", message)
}
