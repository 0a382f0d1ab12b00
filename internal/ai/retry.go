package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// RetryOracle calls the wrapped Oracle up to MaxAttempts times, waiting
// BaseDelay*2^attempt between attempts. It holds no per-call state.
type RetryOracle struct {
	next        Oracle
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger

	wait func(ctx context.Context, d time.Duration) error
}

// NewRetryOracle wraps next. Non-positive values fall back to the defaults.
func NewRetryOracle(next Oracle, maxAttempts int, baseDelay time.Duration, log *zap.Logger) *RetryOracle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}

	return &RetryOracle{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.OrNop(log),
		wait:        utils.WaitFor,
	}
}

func (r *RetryOracle) Complete(ctx context.Context, messages []Message) (string, error) {
	if r.next == nil {
		return "", &OracleError{Attempts: 0, Err: errors.New("oracle is not configured")}
	}

	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		out, err := r.next.Complete(ctx, messages)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &OracleError{Attempts: attempt + 1, Err: ctxErr}
		}

		if attempt == r.maxAttempts-1 {
			break
		}

		delay := utils.Backoff(r.baseDelay, attempt)
		r.logger.Warn("oracle call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("delay", delay),
			zap.Bool("transient", errors.Is(err, ErrTransient)),
			zap.Error(err),
		)

		if err := r.wait(ctx, delay); err != nil {
			return "", &OracleError{Attempts: attempt + 1, Err: err}
		}
	}

	return "", &OracleError{Attempts: r.maxAttempts, Err: lastErr}
}
