package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileExpressionBlank(t *testing.T) {
	e, err := CompileExpression("   ")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Nil(t, Where[map[string]any](e, nil))
}

func TestCompileExpressionInvalid(t *testing.T) {
	_, err := CompileExpression("price >")
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestExpressionMatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
		env  map[string]any
		want bool
	}{
		{"numeric compare", "price >= 100", map[string]any{"price": 120.0}, true},
		{"numeric compare false", "price >= 100", map[string]any{"price": 20.0}, false},
		{"string and bool", `status == "Valid" && is_anchor`, map[string]any{"status": "Valid", "is_anchor": true}, true},
		{"missing field is no match", "price > 1", map[string]any{}, false},
		{"non-boolean result is no match", "price", map[string]any{"price": 3.0}, false},
		{"contains operator", `name contains "ock"`, map[string]any{"name": "Rocket"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := CompileExpression(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.src, e.String())
			assert.Equal(t, tt.want, e.Match(tt.env))
		})
	}
}

func TestWhereAsPredicate(t *testing.T) {
	e, err := CompileExpression(`Status == "Invalid"`)
	require.NoError(t, err)

	env := func(r row) map[string]any {
		return map[string]any{"Status": r.Status}
	}
	got := Apply(tenRows(), Where(e, env))
	assert.Equal(t, []string{"r02", "r05", "r07", "r10"}, ids(got))
}
