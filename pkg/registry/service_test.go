package registry_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/store"
)

func newService(t *testing.T, opts ...registry.Option) (*registry.Service, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "options.json"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return registry.New(st, opts...), st
}

func TestServiceLoadMissingOption(t *testing.T) {
	svc, _ := newService(t)
	regs, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, regs.Empty())
	assert.Equal(t, registry.DefaultOptionName, svc.OptionName())
	assert.True(t, svc.Enabled())
	assert.Empty(t, svc.Menu())
}

func TestServiceUpdateAndLoad(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	result, err := svc.Update(ctx, map[string]any{
		"tr_registered": map[string]any{
			"post_types": []any{
				map[string]any{"singular": "Book", "plural": "Books", "post_type_id": "book"},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.False(t, result.Failed())
	assert.NotEmpty(t, result.Revision)
	assert.Contains(t, result.Message, "Saved settings")

	raw, err := st.Get(ctx, "tr_registered")
	require.NoError(t, err)
	assert.True(t, json.Valid(raw), "stored option should be JSON")

	regs, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, regs.PostTypes, 1)
	pt, ok := regs.PostType("book")
	require.True(t, ok)
	assert.Equal(t, "Books", pt.Plural)
}

func TestServiceUpdateSavesInvalidDocument(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	result, err := svc.Update(ctx, map[string]any{
		"tr_registered": `{"taxonomies":[{"singular":"Genre","plural":"Genres","taxonomy_id":"Bad Id"}]}`,
	})
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Message, "Changes saved with errors")
	assert.Equal(t, []string{"taxonomies.0.taxonomy_id"}, keys(result.Errors.Fields()))

	_, err = st.Get(ctx, "tr_registered")
	assert.NoError(t, err)
}

func TestServiceUpdateWithoutPayload(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	result, err := svc.Update(ctx, map[string]any{"other": 1})
	require.NoError(t, err)
	assert.False(t, result.Saved)

	_, err = st.Get(ctx, "tr_registered")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestServiceDisabled(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t, registry.WithEnabled(false), registry.WithMenu("tools"))
	require.NoError(t, st.Set(ctx, "tr_registered", []byte(`{"post_types":[{"singular":"A","plural":"As"}]}`)))

	regs, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, regs.Empty())
	assert.Equal(t, "tools", svc.Menu())

	_, err = svc.Update(ctx, map[string]any{"tr_registered": map[string]any{}})
	assert.ErrorIs(t, err, registry.ErrDisabled)
}

func TestServiceCustomOptionAndHooks(t *testing.T) {
	ctx := context.Background()
	var seen []string
	svc, st := newService(t,
		registry.WithOptionName("my_types"),
		registry.WithBuildOptions(registry.OnPostType(func(pt registry.PostType) {
			seen = append(seen, pt.ID)
		})),
	)
	require.NoError(t, st.Set(ctx, "my_types", []byte("post_types:\n  - singular: Movie\n    plural: Movies\n")))

	_, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"movie"}, seen)
}

func TestServiceCorruptOption(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	require.NoError(t, st.Set(ctx, "tr_registered", []byte("{broken")))

	_, err := svc.Load(ctx)
	assert.Error(t, err)
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
