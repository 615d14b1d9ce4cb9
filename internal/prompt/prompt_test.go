package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadListDelete(t *testing.T) {
	lib := Open(t.TempDir())

	list, err := lib.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, lib.Save("review", "How is {{city}} doing with {{ role }}? {{city}} again"))
	require.NoError(t, lib.Save("coverage", "Where are our coverage gaps?"))

	tpl, err := lib.Load("review")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "role"}, tpl.Variables)
	assert.False(t, tpl.UpdatedAt.IsZero())

	list, err = lib.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "coverage", list[0].Name)

	require.NoError(t, lib.Delete("coverage"))
	_, err = lib.Load("coverage")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, lib.Delete("coverage"), ErrNotFound)
}

func TestInvalidNames(t *testing.T) {
	lib := Open(t.TempDir())
	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.Error(t, lib.Save(name, "x"), name)
	}
	assert.Error(t, lib.Save("blank", "   \n"))
}

func TestRender(t *testing.T) {
	out, err := Render("Hire in {{city}} for {{role}}?", map[string]string{"city": "Lagos", "role": "Support"})
	require.NoError(t, err)
	assert.Equal(t, "Hire in Lagos for Support?", out)

	_, err = Render("{{a}} {{b}} {{c}}", map[string]string{"b": "x"})
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"a", "c"}, missing.Names)

	out, err = Render("no placeholders", nil)
	require.NoError(t, err)
	assert.Equal(t, "no placeholders", out)
}
