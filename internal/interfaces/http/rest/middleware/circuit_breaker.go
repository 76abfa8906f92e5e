package middleware

import (
	"errors"
	"net/http"
	"time"

	"nodemapper-backend/internal/infrastructure/observability"
	appErrors "nodemapper-backend/pkg/errors"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// ReadyToTrip trips once MinRequests have been seen and the failure
	// ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns a default configuration for circuit breaker
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      10,
	}
}

// errServerFailure marks a 5xx response as a breaker failure.
var errServerFailure = errors.New("server error response")

// CircuitBreaker rejects requests with 503 while the breaker is open. Only
// 5xx responses count as failures. metrics may be nil.
func CircuitBreaker(
	config CircuitBreakerConfig,
	errorHandler *appErrors.ErrorHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	setState := func(state gobreaker.State) {
		if metrics != nil {
			metrics.BreakerState.WithLabelValues(config.Name).Set(float64(state))
		}
	}
	setState(gobreaker.StateClosed)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			setState(to)
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (any, error) {
				ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r)

				if ww.Status() >= http.StatusInternalServerError {
					return nil, errServerFailure
				}
				return nil, nil
			})

			switch {
			case err == nil, errors.Is(err, errServerFailure):
				// The response has already been written.
			case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
				logger.Warn("Circuit breaker rejected request",
					zap.String("breaker", config.Name),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				errorHandler.Handle(w, r, appErrors.NewUnavailableError("api").WithCode("CIRCUIT_OPEN").WithCause(err))
			default:
				errorHandler.Handle(w, r, appErrors.NewInternalError("circuit breaker failure").WithCause(err))
			}
		})
	}
}
