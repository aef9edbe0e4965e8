package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wms-platform/handy-terminal/internal/infrastructure/backend"
	"github.com/wms-platform/handy-terminal/pkg/config"
	"github.com/wms-platform/handy-terminal/pkg/contracts/openapi"
	"github.com/wms-platform/handy-terminal/pkg/logging"
	"github.com/wms-platform/handy-terminal/pkg/metrics"
	"github.com/wms-platform/handy-terminal/pkg/resilience"
)

const breakerName = "backend"

// backendConfig turns the backend section of the configuration into client
// settings: the circuit breaker reports its state to m, and the contract
// transport logs requests and responses that stray from the published API.
func backendConfig(cfg config.BackendConfig, logger *logging.Logger, m *metrics.Metrics) (backend.Config, error) {
	out := backend.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}

	if cfg.Breaker.Enabled {
		breaker := resilience.DefaultCircuitBreakerConfig(breakerName)
		breaker.FailureThreshold = cfg.Breaker.FailureThreshold
		breaker.Timeout = cfg.Breaker.OpenTimeout
		breaker.OnStateChange = func(name string, from, to gobreaker.State) {
			m.SetCircuitBreakerState(name, int(to))
			if to == gobreaker.StateOpen {
				m.RecordCircuitBreakerTrip(name)
			}
		}
		out.Breaker = breaker
		m.SetCircuitBreakerState(breakerName, int(gobreaker.StateClosed))
	}

	if cfg.ValidateContract {
		v, err := openapi.NewBackendValidator()
		if err != nil {
			return backend.Config{}, err
		}
		contractLogger := logger.WithComponent("contract")
		out.Transport = &openapi.Transport{
			Validator: v,
			OnViolation: func(req *http.Request, operationID string, err error) {
				contractLogger.WithContext(req.Context()).WithError(err).Warn("Backend contract violation",
					"operation", operationID,
					"method", req.Method,
					"path", req.URL.Path,
				)
			},
		}
	}

	return out, nil
}

type expirable interface {
	Expired(now time.Time) bool
}

// readiness reports the terminal unready while the backend breaker is open or
// the picker's token has expired.
func readiness(client *backend.Client, sess expirable, now func() time.Time) func() error {
	return func() error {
		if b := client.Breaker(); b != nil && b.State() == gobreaker.StateOpen {
			return errors.New("backend circuit breaker is open")
		}
		if sess.Expired(now()) {
			return errors.New("session token expired")
		}
		return nil
	}
}
