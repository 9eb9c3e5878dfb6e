package strategy

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/retry"
)

// TokenRefresher renews the auth token. A nil error means refreshed.
type TokenRefresher func(ctx context.Context) error

// NetworkRetry waits for connectivity to return before declaring a network
// error recovered. Online already means the failure was transient; report
// success so the caller retries.
func NetworkRetry(monitor *connectivity.Monitor) Strategy {
	return Strategy{
		Name:     "network-retry",
		Priority: 1,
		Matches: func(err error) bool {
			return domain.KindOf(err) == domain.KindNetwork
		},
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			if !monitor.Online() {
				if werr := monitor.WaitOnline(ctx); werr != nil {
					return false, werr
				}
			}
			return true, nil
		},
	}
}

// AuthRefresh renews the token on auth errors. Refresh is itself a network
// call, so transient failures are retried with backoff before giving up.
// When refresh fails for good, the auth-required callback is invoked
// (navigation to a sign-in surface) and the strategy reports failure.
func AuthRefresh(refresh TokenRefresher, onAuthRequired func()) Strategy {
	refreshCfg := retry.Config{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		RetryIf:    domain.IsTransient,
	}
	return Strategy{
		Name:     "auth-refresh",
		Priority: 2,
		Matches: func(err error) bool {
			return domain.KindOf(err) == domain.KindAuth
		},
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			if refresh == nil {
				return false, nil
			}
			if rerr := retry.Run(ctx, refreshCfg, refresh); rerr != nil {
				slog.Warn("Token refresh failed", "error", rerr)
				if onAuthRequired != nil {
					onAuthRequired()
				}
				return false, nil
			}
			return true, nil
		},
	}
}

// ResourceCleanup runs best-effort cleanup for resource-pressure errors and
// always reports success. Each cleaner is panic-guarded.
func ResourceCleanup(cleaners ...func()) Strategy {
	return Strategy{
		Name:     "resource-cleanup",
		Priority: 3,
		Matches: func(err error) bool {
			return domain.KindOf(err) == domain.KindResource
		},
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			for _, clean := range cleaners {
				runCleaner(clean)
			}
			runtime.GC()
			return true, nil
		},
	}
}

func runCleaner(clean func()) {
	defer func() {
		if p := recover(); p != nil {
			slog.Warn("Cleanup routine panicked", "panic", p)
		}
	}()
	clean()
}
