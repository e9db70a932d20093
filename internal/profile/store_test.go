package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/progress"
)

type failingKV struct {
	*MemoryKV
	failWrites bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestStoreUpdatePersistsBlob(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)

	_, err := store.Update(ctx, "  Anna ", func(p models.UserProfile) (models.UserProfile, error) {
		return progress.Merge(&p, progress.SessionOutcome{
			Date:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Score: 3,
		}), nil
	})
	require.NoError(t, err)

	raw, found, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, found)

	var data models.AllUsersData
	require.NoError(t, json.Unmarshal(raw, &data))
	require.Contains(t, data, "anna")
	assert.Equal(t, 3, data["anna"].Points)
}

func TestStoreLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	first := NewStore(kv)
	_, err := first.Update(ctx, "Bram", func(p models.UserProfile) (models.UserProfile, error) {
		p.Points = 42
		return p, nil
	})
	require.NoError(t, err)

	second := NewStore(kv)
	require.NoError(t, second.Load(ctx))

	p, ok := second.Get("BRAM")
	require.True(t, ok)
	assert.Equal(t, 42, p.Points)
	assert.Equal(t, []string{"bram"}, second.Names())
}

func TestStoreLoadMissingKeyIsEmpty(t *testing.T) {
	store := NewStore(NewMemoryKV())
	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, store.Names())

	p := store.GetOrDefault("nobody")
	assert.Equal(t, models.DefaultAvatarID, p.AvatarID)
	assert.NotNil(t, p.LearnedWords)
}

func TestStoreLoadFillsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, StorageKey, []byte(`{"cas":{"points":7}}`)))

	store := NewStore(kv)
	require.NoError(t, store.Load(ctx))

	p, ok := store.Get("cas")
	require.True(t, ok)
	assert.Equal(t, 7, p.Points)
	assert.NotNil(t, p.LearnedWords)
	assert.NotNil(t, p.WordListProgress)
	assert.Equal(t, models.DefaultAvatarID, p.AvatarID)
}

func TestStoreReducerErrorLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())

	_, err := store.Update(ctx, "dana", func(p models.UserProfile) (models.UserProfile, error) {
		p.Points = 5
		return p, nil
	})
	require.NoError(t, err)

	_, err = store.Update(ctx, "dana", func(p models.UserProfile) (models.UserProfile, error) {
		p.Points = 0
		return p, progress.ErrInsufficientPoints
	})
	assert.ErrorIs(t, err, progress.ErrInsufficientPoints)

	p, _ := store.Get("dana")
	assert.Equal(t, 5, p.Points)
}

func TestStoreWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	store := NewStore(kv)

	kv.failWrites = true
	_, err := store.Update(ctx, "eva", func(p models.UserProfile) (models.UserProfile, error) {
		p.Points = 1
		return p, nil
	})
	require.Error(t, err)

	_, ok := store.Get("eva")
	assert.False(t, ok)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())
	_, err := store.Update(ctx, "finn", func(p models.UserProfile) (models.UserProfile, error) {
		p.LearnedWords["kat"] = models.LearnedWord{CorrectCount: 1}
		return p, nil
	})
	require.NoError(t, err)

	p, _ := store.Get("finn")
	p.LearnedWords["kat"] = models.LearnedWord{CorrectCount: 99}

	again, _ := store.Get("finn")
	assert.Equal(t, 1, again.LearnedWords["kat"].CorrectCount)
}

func TestStoreDeleteAndReplace(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())

	assert.ErrorIs(t, store.Delete(ctx, "ghost"), ErrProfileNotFound)

	require.NoError(t, store.Replace(ctx, models.AllUsersData{
		"Gijs": {Points: 3},
		"hana": {Points: 4},
	}))
	assert.Equal(t, []string{"gijs", "hana"}, store.Names())

	require.NoError(t, store.Delete(ctx, "GIJS"))
	assert.Equal(t, []string{"hana"}, store.Names())
}

func TestStoreUpdateRequiresName(t *testing.T) {
	store := NewStore(NewMemoryKV())
	_, err := store.Update(context.Background(), "   ", func(p models.UserProfile) (models.UserProfile, error) {
		return p, nil
	})
	assert.Error(t, err)
}
