package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

func TestElementShow(t *testing.T) {
	out, err := executeCmd(t, "", "element", "show", "fe")
	require.NoError(t, err)
	assert.Contains(t, out, "Fe (26)")
	assert.Contains(t, out, "Iron")
	assert.Contains(t, out, "+3")

	out, err = executeCmd(t, "", "-o", "json", "el", "show", "He")
	require.NoError(t, err)
	var e etypes.Element
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, 2, e.AtomicNumber)
	assert.Nil(t, e.Electronegativity)
}

func TestElementShow_NotFound(t *testing.T) {
	_, err := executeCmd(t, "", "element", "show", "Xx")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeElementNotFound))
}

func TestElementList(t *testing.T) {
	out, err := executeCmd(t, "", "-o", "json", "element", "list")
	require.NoError(t, err)
	var list []etypes.Element
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.NotEmpty(t, list)
	assert.Equal(t, "H", list[0].Symbol)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].AtomicNumber, list[i].AtomicNumber)
	}
}

func TestElementSearch(t *testing.T) {
	out, err := executeCmd(t, "", "-o", "table", "element", "search", "chlor")
	require.NoError(t, err)
	assert.Contains(t, out, "Chlorine")
	assert.Contains(t, out, "SYMBOL")

	out, err = executeCmd(t, "", "-o", "json", "element", "search", "zzz")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", formatStates(nil))
	assert.Equal(t, "+2 -1", formatStates([]int{2, -1}))
	assert.Equal(t, "-", formatEN(nil))
	en := 3.16
	assert.Equal(t, "3.16", formatEN(&en))
}
