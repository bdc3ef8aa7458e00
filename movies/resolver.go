// Package movies implements the query-resolution pipeline: a lookup goes to the
// in-memory cache first, then to the OMDb provider, and on provider failure falls
// back to the durable metadata cache in Postgres. Every failure path collapses to
// "absent" — nothing in here surfaces an error to command dispatch.
package movies

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/moviebot/cache"
	"github.com/onnwee/moviebot/omdb"
	"github.com/onnwee/moviebot/telemetry"
)

// MetadataStore is the durable secondary cache consumed by the resolver.
// *db.Store satisfies it; tests use fakes.
type MetadataStore interface {
	UpsertCachedMetadata(ctx context.Context, query string, rec omdb.Record) error
	CachedMetadata(ctx context.Context, query string) (omdb.Record, bool, error)
}

// Resolver resolves a title query to a metadata record.
type Resolver struct {
	Cache  *cache.Cache
	Client *omdb.Client
	Store  MetadataStore // optional; nil disables the durable fallback

	// Timeout bounds a single provider call. Zero means 8s.
	Timeout time.Duration
}

func (r *Resolver) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 8 * time.Second
}

// Lookup returns the record for query and whether one was found. A fresh cache
// entry short-circuits the provider entirely. Provider "not found" and transport
// failures both come back as found=false; the latter additionally consults the
// durable cache so previously seen titles survive provider outages.
func (r *Resolver) Lookup(ctx context.Context, query string) (omdb.Record, bool) {
	telemetry.Init()
	telemetry.LookupsTotal.Inc()
	log := telemetry.LoggerWithCorr(ctx)

	if rec, ok := r.Cache.Get(query); ok {
		telemetry.CacheHits.Inc()
		return rec, true
	}
	telemetry.CacheMisses.Inc()

	ctx, span := telemetry.StartSpan(ctx, "movies", "provider.lookup",
		attribute.String("query", query))
	defer span.End()

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	rec, err := r.Client.Lookup(fetchCtx, query)
	if err == nil {
		r.Cache.Set(query, rec)
		if r.Store != nil {
			if err := r.Store.UpsertCachedMetadata(ctx, query, rec); err != nil {
				log.Warn("durable cache upsert failed", slog.String("query", query), slog.Any("err", err))
			}
		}
		return rec, true
	}

	if errors.Is(err, omdb.ErrNotFound) {
		telemetry.ProviderNotFound.Inc()
		log.Debug("provider reported no match", slog.String("query", query))
		return omdb.Record{}, false
	}

	// Transport/status/decode failure: a recoverable miss. Try the durable cache
	// before giving up, but never cache the stale copy in memory so the provider
	// is retried on the next query.
	telemetry.ProviderErrors.Inc()
	telemetry.RecordError(span, err)
	log.Warn("provider lookup failed", slog.String("query", query), slog.Any("err", err))
	if r.Store != nil {
		if stale, ok, serr := r.Store.CachedMetadata(ctx, query); serr != nil {
			log.Warn("durable cache read failed", slog.String("query", query), slog.Any("err", serr))
		} else if ok {
			telemetry.DurableFallbacks.Inc()
			log.Info("served stale metadata from durable cache", slog.String("query", query))
			return stale, true
		}
	}
	return omdb.Record{}, false
}
