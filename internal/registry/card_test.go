package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/types"
)

func descriptor(cardType string) types.CardDescriptor {
	return types.CardDescriptor{
		Type:        cardType,
		Name:        "Card " + cardType,
		Description: "test card",
		Icon:        "mdi:school",
		Preview:     true,
	}
}

func TestNewCardRegistry(t *testing.T) {
	registry := NewCardRegistry()

	assert.NotNil(t, registry)
	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.Descriptors())
}

func TestCardRegistry_Register(t *testing.T) {
	registry := NewCardRegistry()

	desc := descriptor("schoology-announcements-card")
	desc.DocumentationURL = "https://github.com/conneroisu/lmscards"
	require.NoError(t, registry.Register(desc))

	retrieved, exists := registry.Get("schoology-announcements-card")
	assert.True(t, exists)
	assert.Equal(t, desc, retrieved)
	assert.Equal(t, 1, registry.Count())

	_, exists = registry.Get("missing")
	assert.False(t, exists)
}

func TestCardRegistry_RejectsDuplicate(t *testing.T) {
	registry := NewCardRegistry()

	require.NoError(t, registry.Register(descriptor("a")))

	changed := descriptor("a")
	changed.Name = "Replacement"
	err := registry.Register(changed)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateCard))

	retrieved, _ := registry.Get("a")
	assert.Equal(t, "Card a", retrieved.Name, "descriptors are write-once")
	assert.Equal(t, 1, registry.Count())
}

func TestCardRegistry_RejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		desc types.CardDescriptor
	}{
		{name: "missing type", desc: types.CardDescriptor{Name: "x"}},
		{name: "missing name", desc: types.CardDescriptor{Type: "x"}},
		{name: "script docs link", desc: types.CardDescriptor{Type: "x", Name: "x", DocumentationURL: "javascript:alert(1)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewCardRegistry()
			err := registry.Register(tt.desc)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Equal(t, 0, registry.Count())
		})
	}
}

func TestCardRegistry_DescriptorsKeepOrder(t *testing.T) {
	registry := NewCardRegistry()
	order := []string{"d", "b", "c", "a"}
	for _, cardType := range order {
		require.NoError(t, registry.Register(descriptor(cardType)))
	}

	var got []string
	for _, d := range registry.Descriptors() {
		got = append(got, d.Type)
	}
	assert.Equal(t, order, got)
}

func TestCardRegistry_Lookup(t *testing.T) {
	registry := NewCardRegistry()
	require.NoError(t, registry.Register(descriptor("a")))

	desc, err := registry.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, "a", desc.Type)

	_, err = registry.Lookup("b")
	assert.True(t, errors.HasCode(err, errors.ErrCodeCardNotFound))
}

func TestCardRegistry_Watch(t *testing.T) {
	registry := NewCardRegistry()
	events := registry.Watch()

	require.NoError(t, registry.Register(descriptor("a")))
	require.Error(t, registry.Register(descriptor("a")))

	added := <-events
	assert.Equal(t, EventTypeAdded, added.Type)
	assert.Equal(t, "a", added.Descriptor.Type)
	assert.False(t, added.Timestamp.IsZero())

	rejected := <-events
	assert.Equal(t, EventTypeRejected, rejected.Type)
	assert.Equal(t, "rejected", rejected.Type.String())

	registry.UnWatch(events)
	_, open := <-events
	assert.False(t, open, "UnWatch closes the channel")
}

func TestCardRegistry_ConcurrentRegister(t *testing.T) {
	registry := NewCardRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every type is registered twice; exactly one attempt wins
			_ = registry.Register(descriptor(fmt.Sprintf("card-%d", i%25)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, registry.Count())
	assert.Len(t, registry.Descriptors(), 25)
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func BenchmarkCardRegistry_Descriptors(b *testing.B) {
	registry := NewCardRegistry()
	for i := 0; i < 4; i++ {
		_ = registry.Register(descriptor(fmt.Sprintf("card-%d", i)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = registry.Descriptors()
	}
}
