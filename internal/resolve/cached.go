package resolve

import (
	"time"

	"github.com/jra3/instancesync/internal/cache"
	"github.com/jra3/instancesync/internal/manifest"
	"github.com/jra3/instancesync/internal/rbxvalue"
)

// CachedSchema memoizes Schema.PropertyType lookups behind a TTL cache. A
// large project tree re-resolves the same handful of className.propertyName
// pairs across thousands of instances; the underlying map lookup is already
// cheap, but this gives the resolver a bounded-memory, self-expiring lookup
// path for pairs repeated across a build.
type CachedSchema struct {
	schema Schema
	types  *cache.PropertyTypeCache
}

// NewCachedSchema wraps schema with a property-type cache. A ttl of 0 falls
// back to one minute, long enough to outlive a single build.
func NewCachedSchema(schema Schema, ttl time.Duration, maxEntries int) *CachedSchema {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSchema{
		schema: schema,
		types:  cache.New(ttl, maxEntries),
	}
}

// Stop releases the cache's background cleanup goroutine.
func (c *CachedSchema) Stop() {
	c.types.Stop()
}

func (c *CachedSchema) key(className, propertyName string) string {
	return className + "." + propertyName
}

// PropertyType mirrors Schema.PropertyType, serving repeated lookups from the
// cache instead of the underlying map.
func (c *CachedSchema) PropertyType(className, propertyName string) (rbxvalue.Type, bool) {
	key := c.key(className, propertyName)
	if typ, ok := c.types.Get(key); ok {
		return typ, true
	}
	typ, ok := c.schema.PropertyType(className, propertyName)
	if ok {
		c.types.Set(key, typ)
	}
	return typ, ok
}

// Resolve coerces raw the same way Schema.Resolve does, routing untagged
// lookups through the property-type cache.
func (c *CachedSchema) Resolve(className, propertyName string, raw manifest.RawValue) (rbxvalue.Value, error) {
	typ := rbxvalue.Type(raw.TypeName)
	if !raw.Tagged {
		declared, ok := c.PropertyType(className, propertyName)
		if !ok {
			return rbxvalue.Value{}, &UnknownPropertyError{className, propertyName}
		}
		typ = declared
	}
	return construct(typ, raw.Raw)
}
