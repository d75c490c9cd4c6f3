package collectibles

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/logger"
)

// Result is the settled outcome of one wallet's retrieval for one source.
// Results are correlated with their wallet strictly by position.
type Result[T any] struct {
	Wallet string
	Value  []T
	Err    error
}

// FetchFunc retrieves the records of one source for a single wallet
type FetchFunc[T any] func(ctx context.Context, wallet string) ([]T, error)

// FetchAll issues one retrieval per wallet on the pool and waits for all of them.
// A failed retrieval never aborts the others; its error is kept in the wallet's Result.
func FetchAll[T any](ctx context.Context, pool pond.Pool, wallets []string, fn FetchFunc[T]) ([]Result[T], error) {
	if pool == nil {
		return nil, errors.New("fetch pool is required")
	}
	if fn == nil {
		return nil, errors.New("fetch function is required")
	}

	results := make([]Result[T], len(wallets))
	group := pool.NewGroup()
	for i, wallet := range wallets {
		results[i].Wallet = wallet
		group.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					results[i].Value = nil
					results[i].Err = fmt.Errorf("fetch for wallet %s panicked: %v", wallet, r)
				}
			}()
			results[i].Value, results[i].Err = fn(ctx, wallet)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to wait for fetches: %w", err)
	}

	return results, nil
}

// Flatten drops failed results and concatenates the rest in wallet order,
// stamping every record with the wallet whose query produced it
func Flatten[T any](ctx context.Context, source string, results []Result[T], stamp func(record *T, wallet string)) []T {
	var total int
	for _, r := range results {
		if r.Err == nil {
			total += len(r.Value)
		}
	}

	records := make([]T, 0, total)
	for _, r := range results {
		if r.Err != nil {
			logger.WarnCtx(ctx, "Dropping failed source retrieval",
				zap.String("source", source),
				zap.String("wallet", r.Wallet),
				zap.Error(r.Err),
			)
			continue
		}
		for _, record := range r.Value {
			if stamp != nil {
				stamp(&record, r.Wallet)
			}
			records = append(records, record)
		}
	}

	return records
}
