package geo

import (
	"context"
	"errors"
	"math"
	"net"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/model"
)

var (
	// ErrNoPosition is returned by the device provider when the client sent no coordinates
	ErrNoPosition = errors.New("device position unavailable")
	// ErrOutOfRange is returned when no known country is close to the position
	ErrOutOfRange = errors.New("no known country near position")
)

// IPLookup resolves an address to a location; an empty ip means "the caller"
type IPLookup interface {
	Lookup(ctx context.Context, ip string) (*model.Location, error)
}

// IPProvider resolves the client address through an IPLookup, caching answers per IP
type IPProvider struct {
	lookup IPLookup
	cache  *expirable.LRU[string, model.Location]
}

// NewIPProvider creates the provider with a cache of size entries kept for ttl
func NewIPProvider(lookup IPLookup, size int, ttl time.Duration) *IPProvider {
	if size <= 0 {
		size = 1024
	}
	return &IPProvider{
		lookup: lookup,
		cache:  expirable.NewLRU[string, model.Location](size, nil, ttl),
	}
}

// Name implements Provider
func (p *IPProvider) Name() string { return "ip" }

// Locate implements Provider. Loopback and private addresses are looked up as
// the caller, since the service cannot resolve them.
func (p *IPProvider) Locate(ctx context.Context, req Request) (*model.Location, error) {
	ip := publicIP(req.IP)

	if loc, ok := p.cache.Get(ip); ok {
		metrics.GeoCacheHitsTotal.Inc()
		return &loc, nil
	}
	metrics.GeoCacheMissesTotal.Inc()

	loc, err := p.lookup.Lookup(ctx, ip)
	if err != nil {
		return nil, err
	}
	loc.Source = model.SourceIP
	if loc.Flag == "" {
		loc.Flag = Flag(loc.CountryCode)
	}
	p.cache.Add(ip, *loc)
	return loc, nil
}

func publicIP(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
		return ""
	}
	return ip.String()
}

// Place is a named point a device position can resolve to
type Place struct {
	Name      string
	Code      string
	Flag      string
	Latitude  float64
	Longitude float64
}

// DeviceProvider resolves the client-reported position to the nearest known country centroid
type DeviceProvider struct {
	places      []Place
	maxDistance float64
}

// DefaultMaxDistanceKm is how far from a centroid a position may be and still resolve
const DefaultMaxDistanceKm = 3000

// NewDeviceProvider creates the provider over countries
func NewDeviceProvider(countries []model.Country) *DeviceProvider {
	places := make([]Place, 0, len(countries))
	for _, c := range countries {
		places = append(places, Place{
			Name:      c.Name,
			Code:      c.Code,
			Flag:      c.Flag,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}
	return &DeviceProvider{places: places, maxDistance: DefaultMaxDistanceKm}
}

// Name implements Provider
func (p *DeviceProvider) Name() string { return "device" }

// Locate implements Provider
func (p *DeviceProvider) Locate(ctx context.Context, req Request) (*model.Location, error) {
	if req.Position == nil {
		return nil, ErrNoPosition
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best, bestDist := -1, math.MaxFloat64
	for i, place := range p.places {
		d := distanceKm(req.Position.Latitude, req.Position.Longitude, place.Latitude, place.Longitude)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > p.maxDistance {
		return nil, ErrOutOfRange
	}

	place := p.places[best]
	return &model.Location{
		Country:     place.Name,
		CountryCode: place.Code,
		Flag:        place.Flag,
		Source:      model.SourceDevice,
	}, nil
}

const earthRadiusKm = 6371.0

// distanceKm is the haversine great-circle distance
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// ValidPosition reports whether lat/lon are real coordinates
func ValidPosition(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 &&
		!math.IsNaN(lat) && !math.IsNaN(lon)
}
