package store

import (
	"testing"

	"chordring/internal/ring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	sp, err := ring.NewSpace(8, 2)
	require.NoError(t, err)
	s := NewMemoryStore()

	k := sp.FromUint64(42)
	_, ok := s.Get(k)
	assert.False(t, ok)

	s.Put(k, []byte("hello"))
	v, ok := s.Get(k)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), v)
	assert.Equal(t, 1, s.Len())

	s.Delete(k)
	_, ok = s.Get(k)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStorePutReturnsPreviousValue(t *testing.T) {
	sp, err := ring.NewSpace(8, 2)
	require.NoError(t, err)
	s := NewMemoryStore()
	k := sp.FromUint64(7)

	old, existed := s.Put(k, []byte("v1"))
	assert.False(t, existed)
	assert.Nil(t, old)

	old, existed = s.Put(k, []byte("v2"))
	assert.True(t, existed)
	assert.Equal(t, []byte("v1"), old)
}

func TestMemoryStorePutIfAbsentPreservesExistingValue(t *testing.T) {
	sp, err := ring.NewSpace(8, 2)
	require.NoError(t, err)
	s := NewMemoryStore()
	k := sp.FromUint64(9)

	existing, inserted := s.PutIfAbsent(k, []byte("first"))
	assert.True(t, inserted)
	assert.Nil(t, existing)

	existing, inserted = s.PutIfAbsent(k, []byte("second"))
	assert.False(t, inserted)
	assert.Equal(t, []byte("first"), existing)

	v, ok := s.Get(k)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), v)
}

func TestMemoryStoreItemsInRange(t *testing.T) {
	sp, err := ring.NewSpace(8, 2)
	require.NoError(t, err)
	s := NewMemoryStore()

	for _, v := range []uint64{5, 10, 15, 200} {
		s.Put(sp.FromUint64(v), []byte{byte(v)})
	}

	lower := sp.FromUint64(0)
	upper := sp.FromUint64(20)
	items := s.Items(lower, upper)
	assert.Len(t, items, 3)

	keys := s.Keys()
	assert.Len(t, keys, 4)
}
