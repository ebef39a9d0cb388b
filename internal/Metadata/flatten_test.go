package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenNestedMaps(t *testing.T) {
	in := map[string]any{
		"PDF": map[string]any{
			"Author":   "Jane",
			"Producer": "LibreOffice",
		},
		"FileSize": float64(2048),
	}
	out := Flatten(in)
	assert.Equal(t, "Jane", out["PDF.Author"])
	assert.Equal(t, "LibreOffice", out["PDF.Producer"])
	assert.Equal(t, "2048", out["FileSize"])
}

func TestFlattenListOfMaps(t *testing.T) {
	in := map[string]any{
		"Pages": []any{
			map[string]any{"Number": float64(1)},
			map[string]any{"Number": float64(2)},
		},
	}
	out := Flatten(in)
	assert.Equal(t, "1", out["Pages[0].Number"])
	assert.Equal(t, "2", out["Pages[1].Number"])
}

func TestFlattenScalarListJoined(t *testing.T) {
	in := map[string]any{"Keywords": []any{"alpha", "beta", float64(3)}}
	out := Flatten(in)
	assert.Equal(t, "alpha, beta, 3", out["Keywords"])
}

func TestFlattenIdempotentOnFlatInput(t *testing.T) {
	in := map[string]any{"a.b": "x", "c[0].d": "y", "e": "z"}
	first := Flatten(in)

	again := map[string]any{}
	for k, v := range first {
		again[k] = v
	}
	second := Flatten(again)
	assert.Equal(t, first, second)
}

func TestRenderScalarFloats(t *testing.T) {
	assert.Equal(t, "5", renderScalar(float64(5)))
	assert.Equal(t, "5.5", renderScalar(5.5))
	assert.Equal(t, "true", renderScalar(true))
	assert.Equal(t, "", renderScalar(nil))
}
