package vslint_test

import (
	"encoding/json"
	"testing"

	"github.com/leohentschker/vslint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeResolve(t *testing.T) {
	t.Parallel()

	t.Run("known tokens map to preset viewports", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			token string
			want  vslint.Viewport
		}{
			{"full-screen", vslint.Viewport{Width: 1920, Height: 1080}},
			{"mobile", vslint.Viewport{Width: 375, Height: 812}},
			{"tablet", vslint.Viewport{Width: 768, Height: 1024}},
			{"xs", vslint.Viewport{Width: 320, Height: 568}},
			{"sm", vslint.Viewport{Width: 640, Height: 480}},
			{"md", vslint.Viewport{Width: 768, Height: 1024}},
			{"lg", vslint.Viewport{Width: 1024, Height: 768}},
			{"xl", vslint.Viewport{Width: 1280, Height: 1024}},
			{"2xl", vslint.Viewport{Width: 1536, Height: 1024}},
			{"3xl", vslint.Viewport{Width: 1920, Height: 1080}},
		}
		for _, tt := range tests {
			got, err := vslint.SizeToken(tt.token).Resolve()
			require.NoError(t, err, tt.token)
			assert.False(t, got.Fit)
			assert.Equal(t, tt.want, got.Viewport, tt.token)
		}
	})

	t.Run("fit resolves to the fit sentinel", func(t *testing.T) {
		t.Parallel()

		got, err := vslint.SizeToken("fit").Resolve()

		require.NoError(t, err)
		assert.True(t, got.Fit)
	})

	t.Run("absent size defaults to full desktop", func(t *testing.T) {
		t.Parallel()

		got, err := vslint.Size{}.Resolve()

		require.NoError(t, err)
		assert.Equal(t, vslint.Viewport{Width: 1920, Height: 1080}, got.Viewport)
	})

	t.Run("explicit dimensions pass through unchanged", func(t *testing.T) {
		t.Parallel()

		got, err := vslint.SizeDims(555, 333).Resolve()

		require.NoError(t, err)
		assert.Equal(t, vslint.Viewport{Width: 555, Height: 333}, got.Viewport)
	})

	t.Run("unknown token is an error", func(t *testing.T) {
		t.Parallel()

		_, err := vslint.SizeToken("enormous").Resolve()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "enormous")
	})

	t.Run("non-positive dimensions are an error", func(t *testing.T) {
		t.Parallel()

		_, err := vslint.SizeDims(0, 100).Resolve()

		require.Error(t, err)
	})
}

func TestRenderSizeJSON(t *testing.T) {
	t.Parallel()

	t.Run("fit serializes as a string", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(vslint.FitSize())
		require.NoError(t, err)
		assert.JSONEq(t, `"fit"`, string(data))

		var got vslint.RenderSize
		require.NoError(t, json.Unmarshal(data, &got))
		assert.True(t, got.Fit)
	})

	t.Run("concrete size serializes as an object", func(t *testing.T) {
		t.Parallel()

		in := vslint.ConcreteSize(vslint.Viewport{Width: 375, Height: 812})
		data, err := json.Marshal(in)
		require.NoError(t, err)
		assert.JSONEq(t, `{"width":375,"height":812}`, string(data))

		var got vslint.RenderSize
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, in, got)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		t.Parallel()

		var got vslint.RenderSize
		err := json.Unmarshal([]byte(`"huge"`), &got)

		require.Error(t, err)
	})
}
