package resolve

import (
	"testing"
	"time"

	"github.com/jra3/instancesync/internal/rbxvalue"
)

func TestCachedSchema_ResolveMatchesSchema(t *testing.T) {
	schema := Schema{"Part": {"Transparency": rbxvalue.TypeFloat}}
	cached := NewCachedSchema(schema, time.Minute, 0)
	defer cached.Stop()

	val, err := cached.Resolve("Part", "Transparency", rawValue(t, `0.25`))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if f, ok := val.AsFloat(); !ok || f != 0.25 {
		t.Errorf("got %v, want 0.25", val)
	}
}

func TestCachedSchema_CachesPropertyTypeLookups(t *testing.T) {
	schema := Schema{"Part": {"Transparency": rbxvalue.TypeFloat}}
	cached := NewCachedSchema(schema, time.Minute, 0)
	defer cached.Stop()

	typ, ok := cached.PropertyType("Part", "Transparency")
	if !ok || typ != rbxvalue.TypeFloat {
		t.Fatalf("got %v, %v", typ, ok)
	}

	// Mutate the underlying schema; a cached lookup should still serve the
	// stale answer until it expires, proving the cache (not the map) was hit.
	delete(schema["Part"], "Transparency")
	typ, ok = cached.PropertyType("Part", "Transparency")
	if !ok || typ != rbxvalue.TypeFloat {
		t.Errorf("expected cached hit despite schema mutation, got %v, %v", typ, ok)
	}
}

func TestCachedSchema_UnknownPropertyErrors(t *testing.T) {
	cached := NewCachedSchema(Schema{}, time.Minute, 0)
	defer cached.Stop()

	_, err := cached.Resolve("Part", "Nonexistent", rawValue(t, `1`))
	if err == nil {
		t.Fatal("expected an error for an unknown property")
	}
}

func TestCachedSchema_DefaultTTL(t *testing.T) {
	cached := NewCachedSchema(Schema{}, 0, 0)
	defer cached.Stop()
	if cached.types == nil {
		t.Fatal("expected a non-nil cache")
	}
}
