package engine

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Verification results, as reported to whoever is adding an account.
const (
	VerifyOK              = "ok"
	VerifyRequestError    = "request.error"
	VerifyConnectionError = "connection.error"
)

// VerifyAccess runs a single server-only cycle with the given credentials
// and returns its outcome code.
func VerifyAccess(ctx context.Context, cfg UpdaterConfig) (int, error) {
	cfg.OnlyCheck = true
	u, err := NewUpdater(cfg)
	if err != nil {
		return 0, err
	}
	defer u.Stop()

	return u.Refresh(ctx), nil
}

// VerifyResult maps an outcome code to ok, request.error or
// connection.error.
func VerifyResult(code int) string {
	switch {
	case code >= 200 && code < 300:
		return VerifyOK
	case code == http.StatusForbidden:
		return VerifyRequestError
	default:
		return VerifyConnectionError
	}
}

// VerifyAll verifies every config concurrently. Results are returned in
// input order.
func VerifyAll(ctx context.Context, cfgs []UpdaterConfig) ([]string, error) {
	results := make([]string, len(cfgs))

	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			code, err := VerifyAccess(gctx, cfg)
			if err != nil {
				return err
			}
			results[i] = VerifyResult(code)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
