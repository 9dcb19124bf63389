package capital

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	capitals map[string]int
	err      error
	calls    int
}

func (f *fakeFetcher) FetchCapitals() (map[string]int, error) {
	f.calls++
	return f.capitals, f.err
}

func TestResolveCacheHit(t *testing.T) {
	f := &fakeFetcher{}
	m := NewMap(map[string]int{"10400": 139}, f)

	id, err := m.ResolveOrRefresh("10400")
	require.NoError(t, err)
	assert.Equal(t, 139, id)
	assert.Equal(t, 0, f.calls, "cache hit must not refresh")
}

func TestResolveRefreshesOnceOnMiss(t *testing.T) {
	f := &fakeFetcher{capitals: map[string]int{"10400": 139, "13200": 128}}
	shared := map[string]int{"99999": 1}
	m := NewMap(shared, f)

	id, err := m.ResolveOrRefresh("13200")
	require.NoError(t, err)
	assert.Equal(t, 128, id)
	assert.Equal(t, 1, f.calls)

	// Refresh repopulates the shared map wholesale.
	_, stale := shared["99999"]
	assert.False(t, stale)
	assert.Equal(t, 139, shared["10400"])
}

func TestResolveUnknownAfterRefresh(t *testing.T) {
	f := &fakeFetcher{capitals: map[string]int{"10400": 139}}
	m := NewMap(nil, f)

	_, err := m.ResolveOrRefresh("00000")
	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "00000", lookupErr.Code)
	assert.Equal(t, 1, f.calls, "exactly one refresh per lookup, no retry loop")
}

func TestRefreshFetchFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("portal down")}
	m := NewMap(map[string]int{"10400": 139}, f)

	_, err := m.ResolveOrRefresh("13200")
	require.Error(t, err)
	var lookupErr *LookupError
	assert.False(t, errors.As(err, &lookupErr), "fetch failure is not a lookup miss")

	// Existing cache survives a failed refresh.
	id, ok := m.Resolve("10400")
	assert.True(t, ok)
	assert.Equal(t, 139, id)
}
