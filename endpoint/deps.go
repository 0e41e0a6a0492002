package endpoint

import (
	"context"
	"sync"
	"time"

	"github.com/ariebrainware/physiofriend-api/events"
	"github.com/ariebrainware/physiofriend-api/notification"
	"github.com/ariebrainware/physiofriend-api/payment"
	"github.com/ariebrainware/physiofriend-api/util"
)

// Notifier delivers the booking notification. *notification.Dispatcher satisfies it.
type Notifier interface {
	Notify(ctx context.Context, b notification.Booking) notification.Result
}

// Deps are the collaborators handlers reach beyond the database. The router
// installs them once at startup with Configure.
type Deps struct {
	Notifier      Notifier
	Publisher     events.Publisher
	Gateway       payment.Gateway
	DoctorCache   *util.DoctorListCache
	Notifications notification.LogStore
}

var (
	depsMu  sync.RWMutex
	current = defaultDeps()
)

func defaultDeps() Deps {
	return Deps{
		Publisher:   events.NoopPublisher{},
		DoctorCache: util.NewDoctorListCache(5 * time.Minute),
	}
}

// Configure replaces the handler dependencies. Zero fields fall back to the defaults.
func Configure(d Deps) {
	def := defaultDeps()
	if d.Publisher == nil {
		d.Publisher = def.Publisher
	}
	if d.DoctorCache == nil {
		d.DoctorCache = def.DoctorCache
	}
	depsMu.Lock()
	current = d
	depsMu.Unlock()
}

func deps() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return current
}
