package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/service"
)

type stubProvider struct {
	name  string
	delay time.Duration
	loc   *model.Location
	err   error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Locate(ctx context.Context, _ Request) (*model.Location, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.loc, s.err
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "🇫🇷", Flag("FR"))
	assert.Equal(t, "🇯🇵", Flag("jp"))
	assert.Equal(t, "", Flag("FRA"))
	assert.Equal(t, "", Flag("1A"))
	assert.Equal(t, "", Flag(""))
}

func TestLocatorFirstSuccessWins(t *testing.T) {
	l := NewLocator(time.Second, zap.NewNop(),
		stubProvider{name: "slow", delay: 200 * time.Millisecond, loc: &model.Location{Country: "Japan", CountryCode: "JP"}},
		stubProvider{name: "fast", delay: time.Millisecond, loc: &model.Location{Country: "France", CountryCode: "FR"}},
	)

	start := time.Now()
	loc, err := l.Locate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "FR", loc.CountryCode)
	assert.Equal(t, "🇫🇷", loc.Flag)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestLocatorSkipsFailures(t *testing.T) {
	l := NewLocator(time.Second, zap.NewNop(),
		stubProvider{name: "denied", err: ErrNoPosition},
		stubProvider{name: "ip", delay: 20 * time.Millisecond, loc: &model.Location{Country: "Germany", CountryCode: "DE"}},
	)

	loc, err := l.Locate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "DE", loc.CountryCode)
}

func TestLocatorAllFail(t *testing.T) {
	l := NewLocator(time.Second, zap.NewNop(),
		stubProvider{name: "device", err: ErrNoPosition},
		stubProvider{name: "ip", err: errors.New("boom")},
		stubProvider{name: "empty", loc: &model.Location{}},
	)

	loc, err := l.Locate(context.Background(), Request{})
	assert.Nil(t, loc)
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.ErrorIs(t, err, ErrNoPosition)
}

func TestLocatorTimesOutSlowProviders(t *testing.T) {
	l := NewLocator(20*time.Millisecond, zap.NewNop(),
		stubProvider{name: "hang", delay: time.Hour, loc: &model.Location{CountryCode: "US"}},
	)

	start := time.Now()
	_, err := l.Locate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLocatorWithoutProviders(t *testing.T) {
	_, err := NewLocator(0, zap.NewNop()).Locate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotDetected)
}

func TestDeviceProvider(t *testing.T) {
	p := NewDeviceProvider(catalog.MustDefault().Countries())

	// Lyon
	loc, err := p.Locate(context.Background(), Request{Position: &model.Position{Latitude: 45.76, Longitude: 4.84}})
	require.NoError(t, err)
	assert.Equal(t, "FR", loc.CountryCode)
	assert.Equal(t, model.SourceDevice, loc.Source)

	// Osaka
	loc, err = p.Locate(context.Background(), Request{Position: &model.Position{Latitude: 34.69, Longitude: 135.50}})
	require.NoError(t, err)
	assert.Equal(t, "JP", loc.CountryCode)

	_, err = p.Locate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoPosition)

	// South Pacific
	_, err = p.Locate(context.Background(), Request{Position: &model.Position{Latitude: -45, Longitude: -140}})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

type countingLookup struct {
	calls atomic.Int32
	gotIP string
}

func (c *countingLookup) Lookup(_ context.Context, ip string) (*model.Location, error) {
	c.calls.Add(1)
	c.gotIP = ip
	return &model.Location{Country: "Thailand", CountryCode: "TH", City: "Bangkok"}, nil
}

func TestIPProviderCachesPerIP(t *testing.T) {
	lookup := &countingLookup{}
	p := NewIPProvider(lookup, 8, time.Minute)

	for i := 0; i < 3; i++ {
		loc, err := p.Locate(context.Background(), Request{IP: "203.0.113.9"})
		require.NoError(t, err)
		assert.Equal(t, "TH", loc.CountryCode)
		assert.Equal(t, "🇹🇭", loc.Flag)
		assert.Equal(t, model.SourceIP, loc.Source)
	}
	assert.Equal(t, int32(1), lookup.calls.Load())
	assert.Equal(t, "203.0.113.9", lookup.gotIP)
}

func TestIPProviderLooksUpPrivateAddressesAsCaller(t *testing.T) {
	lookup := &countingLookup{}
	p := NewIPProvider(lookup, 8, time.Minute)

	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "::1", "not-an-ip"} {
		_, err := p.Locate(context.Background(), Request{IP: ip})
		require.NoError(t, err)
		assert.Equal(t, "", lookup.gotIP, ip)
	}
	assert.Equal(t, int32(1), lookup.calls.Load())
}

func TestIPProviderMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	l := NewLocator(time.Second, zap.NewNop(),
		NewIPProvider(service.NewIPAPIClient(srv.URL), 8, time.Minute),
	)
	loc, err := l.Locate(context.Background(), Request{IP: "198.51.100.4"})
	assert.Nil(t, loc)
	assert.ErrorIs(t, err, ErrNotDetected)
}

func TestRaceDeviceAgainstIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{"country_name":"Japan","country_code":"JP"}`))
	}))
	defer srv.Close()

	l := NewLocator(time.Second, zap.NewNop(),
		NewDeviceProvider(catalog.MustDefault().Countries()),
		NewIPProvider(service.NewIPAPIClient(srv.URL), 8, time.Minute),
	)

	withPosition, err := l.Locate(context.Background(), Request{
		IP:       "198.51.100.4",
		Position: &model.Position{Latitude: 48.85, Longitude: 2.35},
	})
	require.NoError(t, err)
	assert.Equal(t, "FR", withPosition.CountryCode)
	assert.Equal(t, model.SourceDevice, withPosition.Source)

	withoutPosition, err := l.Locate(context.Background(), Request{IP: "198.51.100.4"})
	require.NoError(t, err)
	assert.Equal(t, "JP", withoutPosition.CountryCode)
	assert.Equal(t, model.SourceIP, withoutPosition.Source)
}

func TestValidPosition(t *testing.T) {
	assert.True(t, ValidPosition(0, 0))
	assert.False(t, ValidPosition(91, 0))
	assert.False(t, ValidPosition(0, 181))
}
