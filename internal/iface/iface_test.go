package iface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/erc/internal/ast"
	ercerrors "github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/types"
)

func testModule() *ast.Module {
	point := types.Record{Name: "Point", Fields: types.NewFieldMap(
		types.FieldPair{Key: "x", Value: types.Number{}},
	)}
	return &ast.Module{
		Path:    "Test",
		Exports: map[string]bool{"origin": true},
		TypeDefinitions: []ast.TypeDefinition{
			{Name: "Point", Type: point},
		},
		Definitions: []*ast.Definition{
			{Name: "origin", Type: point, Body: ast.RecordConstruction{Type: point, Elements: ast.NewElementMap()}},
			{Name: "hidden", Type: types.Number{}, Body: ast.NumberLiteral{Value: 1}},
		},
	}
}

func TestBuild(t *testing.T) {
	t.Run("exports appear without bodies", func(t *testing.T) {
		iface, err := Build(testModule())
		require.NoError(t, err)
		require.Len(t, iface.Definitions, 1)
		assert.Equal(t, "origin", iface.Definitions[0].Name)
		assert.Nil(t, iface.Definitions[0].Body, "interface copies must not carry bodies")
	})

	t.Run("unknown export fails", func(t *testing.T) {
		m := testModule()
		m.Exports["nope"] = true
		_, err := Build(m)
		require.Error(t, err)
		ce, ok := err.(*ercerrors.CompileError)
		require.True(t, ok)
		assert.Equal(t, ercerrors.IFACE001, ce.Code)
	})

	t.Run("unknown foreign export fails", func(t *testing.T) {
		m := testModule()
		m.ForeignExports = map[string]bool{"nope": true}
		_, err := Build(m)
		require.Error(t, err)
		ce, ok := err.(*ercerrors.CompileError)
		require.True(t, ok)
		assert.Equal(t, ercerrors.IFACE001, ce.Code)
	})

	t.Run("exported type names count as known", func(t *testing.T) {
		m := testModule()
		m.Exports["Point"] = true
		_, err := Build(m)
		assert.NoError(t, err)
	})
}

func TestEncodeYAML(t *testing.T) {
	iface, err := Build(testModule())
	require.NoError(t, err)
	b, err := EncodeYAML(iface)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "path: Test")
	assert.Contains(t, out, "Point")
	assert.Contains(t, out, "origin")
}
