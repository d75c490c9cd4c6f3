package uri

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// Config holds configuration for the URI resolver
type Config struct {
	// IPFSGateways is the list of IPFS gateways to try
	IPFSGateways []string
	// ArweaveGateways is the list of Arweave gateways to try
	ArweaveGateways []string
}

// Resolver defines the interface for resolving media URIs
//
//go:generate mockgen -source=resolver.go -destination=../mocks/uri_resolver.go -package=mocks -mock_names=Resolver=MockURIResolver
type Resolver interface {
	// Resolve turns ipfs:// and ar:// URIs, and IPFS gateway URLs, into a URL served by
	// a reachable gateway. Other URIs are returned unchanged without any request.
	Resolve(ctx context.Context, uri string) (string, error)
}

type resolver struct {
	httpClient adapter.HTTPClient
	config     Config
}

func NewResolver(httpClient adapter.HTTPClient, config Config) Resolver {
	return &resolver{
		httpClient: httpClient,
		config:     config,
	}
}

func (r *resolver) Resolve(ctx context.Context, uri string) (string, error) {
	if cid, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		cid = strings.TrimPrefix(cid, "ipfs/")
		return r.resolveIPFS(ctx, cid)
	}

	if txID, ok := strings.CutPrefix(uri, "ar://"); ok {
		return r.resolveArweave(ctx, txID)
	}

	// Gateway URLs are re-resolved since the original gateway is often rate limited
	if _, cid, ok := strings.Cut(uri, "/ipfs/"); ok && cid != "" && len(r.config.IPFSGateways) > 0 {
		resolved, err := r.resolveIPFS(ctx, cid)
		if err != nil {
			logger.WarnCtx(ctx, "Falling back to original IPFS gateway URL", zap.String("uri", uri), zap.Error(err))
			return uri, nil
		}
		return resolved, nil
	}

	return uri, nil
}

func (r *resolver) resolveIPFS(ctx context.Context, cid string) (string, error) {
	if len(r.config.IPFSGateways) == 0 {
		return "", fmt.Errorf("no IPFS gateways configured")
	}

	url, err := r.firstReachable(ctx, r.config.IPFSGateways, func(gateway string) string {
		return fmt.Sprintf("%s/ipfs/%s", strings.TrimSuffix(gateway, "/"), cid)
	})
	if err != nil {
		return "", fmt.Errorf("no working IPFS gateway found for CID %s: %w", cid, err)
	}
	return url, nil
}

func (r *resolver) resolveArweave(ctx context.Context, txID string) (string, error) {
	if len(r.config.ArweaveGateways) == 0 {
		return "", fmt.Errorf("no Arweave gateways configured")
	}

	url, err := r.firstReachable(ctx, r.config.ArweaveGateways, func(gateway string) string {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(gateway, "/"), txID)
	})
	if err != nil {
		return "", fmt.Errorf("no working Arweave gateway found for TX %s: %w", txID, err)
	}
	return url, nil
}

// firstReachable probes every gateway in parallel with a HEAD request
// and returns the first URL answering 200 OK
func (r *resolver) firstReachable(ctx context.Context, gateways []string, build func(gateway string) string) (string, error) {
	type result struct {
		url string
		err error
	}

	resultCh := make(chan result, len(gateways))
	var wg sync.WaitGroup

	for _, gateway := range gateways {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			resp, err := r.httpClient.Head(ctx, url)
			if err != nil {
				resultCh <- result{err: err}
				return
			}
			if resp.Body != nil {
				if err := resp.Body.Close(); err != nil {
					logger.WarnCtx(ctx, "failed to close response body", zap.Error(err), zap.String("url", url))
				}
			}

			if resp.StatusCode == http.StatusOK {
				resultCh <- result{url: url}
			} else {
				resultCh <- result{err: fmt.Errorf("gateway returned status %d", resp.StatusCode)}
			}
		}(build(gateway))
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var lastErr error
	for res := range resultCh {
		if res.err == nil {
			logger.DebugCtx(ctx, "Found working gateway", zap.String("url", res.url))
			return res.url, nil
		}
		lastErr = res.err
	}

	return "", lastErr
}
