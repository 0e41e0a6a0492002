package util

import (
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	cache "github.com/patrickmn/go-cache"
)

// DoctorListCache keeps the rendered public doctor listings between directory changes.
type DoctorListCache struct {
	c *cache.Cache
}

// NewDoctorListCache builds a cache whose entries live for ttl. ttl <= 0 defaults to five minutes.
func NewDoctorListCache(ttl time.Duration) *DoctorListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DoctorListCache{c: cache.New(ttl, 2*ttl)}
}

// Get returns the cached listing stored under key.
func (d *DoctorListCache) Get(key string) ([]model.DoctorView, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.c.Get(key)
	if !ok {
		return nil, false
	}
	list, ok := v.([]model.DoctorView)
	return list, ok
}

// Set stores a listing under key.
func (d *DoctorListCache) Set(key string, list []model.DoctorView) {
	if d == nil {
		return
	}
	d.c.Set(key, list, cache.DefaultExpiration)
}

// Invalidate drops every listing. Call after any doctor or slot mutation.
func (d *DoctorListCache) Invalidate() {
	if d == nil {
		return
	}
	d.c.Flush()
}
