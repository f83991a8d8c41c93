package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureFind(t *testing.T) {
	f := newFixture(t, `<div id="a"><span class="x">hi</span></div>`)

	assert.NotNil(t, f.Find("#a"))
	assert.Nil(t, f.Find("#missing"))
	assert.Nil(t, f.Find("[["))
	assert.Equal(t, `<span class="x">hi</span>`, f.HTML("#a"))
	assert.Empty(t, f.HTML("#missing"))
}

func TestFixtureDispatch(t *testing.T) {
	f := newFixture(t, `<div id="a" class="w"><b id="in"></b></div>`)
	c := declare(t, f, "w")

	var detail any
	require.NoError(t, c.On("poke", func(ctx *Context) { detail = ctx.Event.Detail }))
	f.Start()

	require.NoError(t, f.Dispatch("#in", "poke", 42))
	assert.Equal(t, 42, detail)

	err := f.Dispatch("#missing", "poke", nil)
	assert.ErrorContains(t, err, `no element matches "#missing"`)
}

func TestFixtureStartTwice(t *testing.T) {
	f := newFixture(t, `<div class="one two"></div>`)

	var mounted []string
	one := declare(t, f, "one")
	require.NoError(t, one.On(EventMount, func(*Context) { mounted = append(mounted, "one") }))
	f.Start()

	two := declare(t, f, "two")
	require.NoError(t, two.On(EventMount, func(*Context) { mounted = append(mounted, "two") }))
	assert.Equal(t, []string{"one"}, mounted)

	f.Start()
	assert.Equal(t, []string{"one", "two"}, mounted)
}
