package util

import (
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

// IPLocation is the coarse location attached to security events.
type IPLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

var (
	geoMu      sync.RWMutex
	geoipDB    *geoip2.Reader
	geoipCache = cache.New(24*time.Hour, time.Hour)
)

// InitGeoIP opens a GeoIP2/GeoLite2 City .mmdb file. An empty path leaves lookups disabled.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoMu.Lock()
	defer geoMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
	}
	geoipDB = r
	geoipCache.Flush()
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	geoMu.Lock()
	defer geoMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// GetIPLocation resolves ip through the local database, caching results for a day.
// Private, loopback and unparsable addresses resolve to an empty location.
func GetIPLocation(ip string) IPLocation {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return IPLocation{}
	}

	if v, ok := geoipCache.Get(ip); ok {
		return v.(IPLocation)
	}

	geoMu.RLock()
	reader := geoipDB
	geoMu.RUnlock()
	if reader == nil {
		return IPLocation{}
	}

	rec, err := reader.City(parsed)
	if err != nil {
		Logger().Debug().Err(err).Str("ip", ip).Msg("geoip lookup failed")
		return IPLocation{}
	}

	loc := IPLocation{City: rec.City.Names["en"], Country: rec.Country.Names["en"]}
	if loc.Country == "" {
		loc.Country = rec.Country.IsoCode
	}
	geoipCache.Set(ip, loc, cache.DefaultExpiration)
	return loc
}
