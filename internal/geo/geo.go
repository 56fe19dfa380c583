// Package geo suggests the visitor's current country.
//
// Several providers race; the first one to resolve a country wins. When every
// provider fails the suggestion is simply not shown.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/model"
)

// DefaultTimeout bounds each provider, matching the browser geolocation timeout
const DefaultTimeout = 8 * time.Second

// ErrNotDetected is returned when no provider could resolve a country
var ErrNotDetected = errors.New("location not detected")

// Request carries what the client told us about itself
type Request struct {
	IP       string
	Position *model.Position
}

// Provider resolves a request to a location
type Provider interface {
	Name() string
	Locate(ctx context.Context, req Request) (*model.Location, error)
}

// Locator races its providers
type Locator struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewLocator creates a locator; a non-positive timeout means DefaultTimeout
func NewLocator(timeout time.Duration, logger *zap.Logger, providers ...Provider) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{providers: providers, timeout: timeout, logger: logger}
}

type outcome struct {
	provider string
	loc      *model.Location
	err      error
}

// Locate returns the first successful provider result. Slower providers are
// cancelled and their results discarded.
func (l *Locator) Locate(ctx context.Context, req Request) (*model.Location, error) {
	if len(l.providers) == 0 {
		return nil, ErrNotDetected
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, len(l.providers))
	for _, p := range l.providers {
		go func(p Provider) {
			pctx, pcancel := context.WithTimeout(ctx, l.timeout)
			defer pcancel()

			loc, err := p.Locate(pctx, req)
			if err == nil && (loc == nil || loc.CountryCode == "") {
				err = fmt.Errorf("%s returned no country", p.Name())
			}
			results <- outcome{provider: p.Name(), loc: loc, err: err}
		}(p)
	}

	var errs []error
	for range l.providers {
		r := <-results
		if r.err != nil {
			metrics.GeoLookupsTotal.WithLabelValues(r.provider, "failed").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", r.provider, r.err))
			continue
		}

		metrics.GeoLookupsTotal.WithLabelValues(r.provider, "success").Inc()
		loc := *r.loc
		if loc.Flag == "" {
			loc.Flag = Flag(loc.CountryCode)
		}
		l.logger.Debug("location detected",
			zap.String("provider", r.provider),
			zap.String("country", loc.CountryCode))
		return &loc, nil
	}

	l.logger.Debug("location not detected", zap.Error(errors.Join(errs...)))
	return nil, fmt.Errorf("%w: %w", ErrNotDetected, errors.Join(errs...))
}

// Flag converts an ISO alpha-2 code into its regional-indicator emoji.
// Anything that is not two ASCII letters yields an empty string.
func Flag(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
