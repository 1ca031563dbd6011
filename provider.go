package clipsave

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sort"

	"github.com/clipsave/clipsave/generic"
)

var (
	ErrDuplicateProvider = errors.New("duplicate provider name")
	ErrInvalidProvider   = errors.New("invalid provider")
	ErrUnknownProvider   = errors.New("unknown provider")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

// A ResolveFunc queries one provider for the given source URL, returning
// Some(descriptor) on success, None when the response shape was present
// but carried no usable video, or an error for call/parse failures.
type ResolveFunc = func(ctx context.Context, client *http.Client, sourceURL string) (generic.Option[VideoDescriptor], error)

// A Provider knows how to resolve URLs of one platform into a
// VideoDescriptor via a single third-party API.
type Provider struct {
	Name     string
	Platform Platform
	// Priority within the platform's provider list, lower (including
	// negative) means tried earlier.
	Priority int16
	Resolve  ResolveFunc
}

func (p Provider) WithName(name string) Provider {
	p.Name = name
	return p
}

func (p Provider) WithPriority(priority int16) Provider {
	p.Priority = priority
	return p
}

// A ProviderRegistry holds the ordered provider lists per platform. It is
// populated at init time by provider packages and read-only afterwards.
type ProviderRegistry struct {
	byPlatform  map[Platform][]*Provider
	providerMap map[string]*Provider
}

// Add registers a Provider. Provider.Name, Provider.Platform and
// Provider.Resolve must be set, and Provider.Name must be unique within
// the ProviderRegistry.
func (r *ProviderRegistry) Add(p Provider) error {
	if r.providerMap == nil {
		r.providerMap = make(map[string]*Provider)
		r.byPlatform = make(map[Platform][]*Provider)
	}
	if p.Name == "" || p.Platform == "" || p.Platform == PlatformUnknown || p.Resolve == nil {
		return ErrInvalidProvider
	}
	if _, ok := r.providerMap[p.Name]; ok {
		return ErrDuplicateProvider
	}
	r.providerMap[p.Name] = &p
	r.byPlatform[p.Platform] = append(r.byPlatform[p.Platform], r.providerMap[p.Name])
	r.sortByPriority(p.Platform)
	return nil
}

// Create is a shortcut for Add(Provider{Name: ..., Platform: ..., Resolve: ...}).
func (r *ProviderRegistry) Create(name string, platform Platform, f ResolveFunc) error {
	return r.Add(Provider{Name: name, Platform: platform, Resolve: f})
}

// CreatePriority is like Create but with an explicit priority.
func (r *ProviderRegistry) CreatePriority(name string, platform Platform, f ResolveFunc, priority int16) error {
	return r.Add(Provider{Name: name, Platform: platform, Resolve: f, Priority: priority})
}

// MustAdd wraps Add but panics if there is an error.
func (r *ProviderRegistry) MustAdd(p Provider) {
	generic.Unwrap_(r.Add(p))
}

// MustCreate wraps Create but panics if there is an error.
func (r *ProviderRegistry) MustCreate(name string, platform Platform, f ResolveFunc) {
	generic.Unwrap_(r.Create(name, platform, f))
}

// MustCreatePriority wraps CreatePriority but panics if there is an error.
func (r *ProviderRegistry) MustCreatePriority(name string, platform Platform, f ResolveFunc, priority int16) {
	generic.Unwrap_(r.CreatePriority(name, platform, f, priority))
}

// ProvidersFor returns the platform's providers in ascending priority
// order. The list is empty for PlatformUnknown or a platform nothing has
// registered for. Callers must not mutate the returned slice.
func (r *ProviderRegistry) ProvidersFor(platform Platform) []*Provider {
	return r.byPlatform[platform]
}

// GetPriority gets the priority of the named Provider. If
// ErrUnknownProvider is returned, the returned priority is the default.
func (r *ProviderRegistry) GetPriority(name string) (int16, error) {
	if p, ok := r.providerMap[name]; ok {
		return p.Priority, nil
	}
	return PriorityDefault, ErrUnknownProvider
}

// List returns the names of registered providers, grouped by platform in
// priority order.
func (r *ProviderRegistry) List() []string {
	names := make([]string, 0, len(r.providerMap))
	for _, platform := range detectionOrder {
		for _, p := range r.byPlatform[platform] {
			names = append(names, p.Name)
		}
	}
	return names
}

func (r *ProviderRegistry) sortByPriority(platform Platform) {
	providers := r.byPlatform[platform]
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority < providers[j].Priority
	})
}

var DefaultProviderRegistry ProviderRegistry
