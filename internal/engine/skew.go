package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-datetools/internal/config"
)

// MeasureSkew compares a remote server clock against the local one. The Date
// response header of targetURL is fetched, parsed with the RFC 2822 grammar,
// and subtracted from the local instant reported by clock. The returned
// duration is remote minus local: positive means the remote clock runs ahead.
// The remote instant is returned alongside for display.
//
// The Date header only carries second precision and the measurement includes
// the network round-trip, so the result is an estimate, not an NTP reading.
func MeasureSkew(ctx context.Context, fetcher DateFetcher, clock Clock, targetURL string) (time.Duration, time.Time, error) {
	if fetcher == nil {
		return 0, time.Time{}, errors.New(config.ErrFetcherMissing)
	}

	header, err := fetcher.FetchDate(ctx, targetURL)
	if err != nil {
		if ctx.Err() != nil {
			return 0, time.Time{}, ctx.Err()
		}
		return 0, time.Time{}, err
	}

	// Read the local clock right after the response arrives, so the skew
	// absorbs at most one round-trip of error.
	local := clock.Now()

	remote, err := ParseRFC2822(header)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%s: %w", config.ErrDateHeaderParse, err)
	}

	skew := remote.Sub(local)
	slog.Debug(config.MsgSkewMeasured,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeySkewMs, skew.Milliseconds(),
	)
	return skew, remote, nil
}
