package capsule

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextQueryScopedToElement(t *testing.T) {
	f := newFixture(t, `
		<li class="item" id="outer-item"></li>
		<ul id="w" class="w"><li class="item" id="i1"></li><li class="item" id="i2"></li></ul>`)
	c := declare(t, f, "w")

	var ids []string
	var first string
	require.NoError(t, c.On(EventMount, func(ctx *Context) {
		items, err := ctx.QueryAll(".item")
		require.NoError(t, err)
		for _, it := range items {
			ids = append(ids, idOf(it))
		}
		el, err := ctx.Query(".item")
		require.NoError(t, err)
		first = idOf(el)

		missing, err := ctx.Query(".none")
		require.NoError(t, err)
		assert.Nil(t, missing)

		_, err = ctx.Query("[[")
		assert.Error(t, err)
	}))
	f.Start()

	assert.Equal(t, []string{"i1", "i2"}, ids)
	assert.Equal(t, "i1", first)
}

func TestContextEmitBubblesToAncestors(t *testing.T) {
	f := newFixture(t, `
		<div id="p" class="parent"><span id="c" class="child"></span></div>
		<div id="s" class="parent"></div>`)
	parent := declare(t, f, "parent")
	child := declare(t, f, "child")

	got := map[string]int{}
	var detail any
	require.NoError(t, parent.On("ping", func(ctx *Context) {
		got[idOf(ctx.El)]++
		detail = ctx.Event.Detail
	}))
	require.NoError(t, child.On(EventMount, func(ctx *Context) {
		ctx.Emit("ping", "hello")
	}))
	f.Start()

	assert.Equal(t, map[string]int{"p": 1}, got)
	assert.Equal(t, "hello", detail)
}

func TestContextPubReachesSubscribersAnywhere(t *testing.T) {
	f := newFixture(t, `
		<div id="left"><button id="b" class="sender"></button></div>
		<div id="right"><p id="r1" class="listener"></p><p id="r2" class="listener"></p></div>
		<p id="other" class="bystander"></p>`)
	sender := declare(t, f, "sender")
	listener := declare(t, f, "listener")
	bystander := declare(t, f, "bystander")

	require.NoError(t, sender.On("click", func(ctx *Context) {
		require.NoError(t, ctx.Pub("refresh", 7))
	}))
	got := map[string]any{}
	listener.Sub("refresh")
	require.NoError(t, listener.On("refresh", func(ctx *Context) {
		assert.False(t, ctx.Event.Bubbles)
		got[idOf(ctx.El)] = ctx.Event.Detail
	}))
	bystanderCalls := 0
	require.NoError(t, bystander.On("refresh", func(*Context) { bystanderCalls++ }))
	f.Start()

	assert.True(t, f.Find("#r1").HasClass(SubscriberClass("refresh")))

	require.NoError(t, f.Click("#b"))
	assert.Equal(t, map[string]any{"r1": 7, "r2": 7}, got)
	assert.Equal(t, 0, bystanderCalls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	f := newFixture(t, `<div></div>`)
	assert.NoError(t, f.Registry.Publish("nobody", nil))
}

func TestContextDetail(t *testing.T) {
	f := newFixture(t, `<div id="w" class="w"></div>`)
	c := declare(t, f, "w")

	type moved struct {
		X  int    `msgpack:"x"`
		Y  int    `msgpack:"y"`
		By string `msgpack:"by"`
	}

	var got moved
	require.NoError(t, c.On("move", func(ctx *Context) {
		require.NoError(t, ctx.Detail(&got))
	}))
	f.Start()

	require.NoError(t, f.Dispatch("#w", "move", map[string]any{"x": 3, "y": -4, "by": "drag"}))
	assert.Equal(t, moved{X: 3, Y: -4, By: "drag"}, got)
}

type counterProps struct {
	Start int    `msgpack:"start"`
	Label string `msgpack:"label"`
}

func propsFixture(t *testing.T, sensitive bool) *Fixture {
	t.Helper()
	enc, err := NewEncoder([]byte("test-key"))
	require.NoError(t, err)

	attrs, err := PropsAttrs("counter", enc, counterProps{Start: 3, Label: "clicks"}, sensitive)
	require.NoError(t, err)

	f := newFixture(t, `<div id="w"></div>`, WithEncoder(enc))
	el := f.Find("#w")
	for k, v := range attrs {
		el.SetAttr(k, v.(string))
	}
	return f
}

func TestContextProps(t *testing.T) {
	for _, sensitive := range []bool{false, true} {
		f := propsFixture(t, sensitive)
		c := declare(t, f, "counter")

		var got counterProps
		require.NoError(t, c.On(EventMount, func(ctx *Context) {
			require.NoError(t, ctx.Props(&got))
		}))
		f.Start()

		assert.Equal(t, counterProps{Start: 3, Label: "clicks"}, got, "sensitive=%v", sensitive)
	}
}

func TestContextPropsErrors(t *testing.T) {
	t.Run("no encoder", func(t *testing.T) {
		f := newFixture(t, `<div id="w" class="w" data-props="x.y"></div>`)
		c := declare(t, f, "w")
		var err error
		require.NoError(t, c.On(EventMount, func(ctx *Context) {
			err = ctx.Props(&counterProps{})
		}))
		f.Start()
		assert.ErrorIs(t, err, ErrNoEncoder)
	})

	t.Run("no props", func(t *testing.T) {
		enc, encErr := NewEncoder([]byte("k"))
		require.NoError(t, encErr)
		f := newFixture(t, `<div id="w" class="w"></div>`, WithEncoder(enc))
		c := declare(t, f, "w")
		var err error
		require.NoError(t, c.On(EventMount, func(ctx *Context) {
			err = ctx.Props(&counterProps{})
		}))
		f.Start()
		assert.ErrorIs(t, err, ErrNoProps)
	})

	t.Run("tampered", func(t *testing.T) {
		f := propsFixture(t, false)
		el := f.Find("#w")
		v, _ := el.Attr(PropsAttr)
		el.SetAttr(PropsAttr, v+"x")

		c := declare(t, f, "counter")
		var err error
		require.NoError(t, c.On(EventMount, func(ctx *Context) {
			err = ctx.Props(&counterProps{})
		}))
		f.Start()
		assert.True(t, IsDecodeError(err), "got %v", err)
	})
}

func TestPropsAttrs(t *testing.T) {
	enc, err := NewEncoder([]byte("k"))
	require.NoError(t, err)

	attrs, err := PropsAttrs("counter", nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, templ.Attributes{"class": "counter"}, attrs)

	attrs, err = PropsAttrs("counter", enc, counterProps{Start: 1}, false)
	require.NoError(t, err)
	assert.Contains(t, attrs, PropsAttr)
	assert.NotContains(t, attrs, SealedPropsAttr)

	attrs, err = PropsAttrs("counter", enc, counterProps{Start: 1}, true)
	require.NoError(t, err)
	assert.Contains(t, attrs, SealedPropsAttr)
	assert.NotContains(t, attrs, PropsAttr)

	_, err = PropsAttrs("counter", nil, counterProps{}, false)
	assert.ErrorIs(t, err, ErrNoEncoder)

	_, err = PropsAttrs("bad name", enc, nil, false)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestComponentRender(t *testing.T) {
	f := newFixture(t, `<div id="a" class="card"></div><div id="b" class="card"></div>`)
	c := declare(t, f, "card")

	renders := 0
	c.Render(templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		renders++
		_, err := io.WriteString(w, `<h2 class="title">Card</h2>`)
		return err
	}))
	var seen []string
	require.NoError(t, c.On(EventMount, func(ctx *Context) {
		el, err := ctx.Query(".title")
		require.NoError(t, err)
		require.NotNil(t, el)
		seen = append(seen, idOf(ctx.El))
	}))
	f.Start()

	assert.Equal(t, 2, renders)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, `<h2 class="title">Card</h2>`, f.HTML("#a"))
}

func TestComponentRenderFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, `<div id="a" class="card">keep</div>`, WithLogger(zerolog.New(&buf)))
	c := declare(t, f, "card")

	c.Render(templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	}))
	mounted := false
	require.NoError(t, c.On(EventMount, func(*Context) { mounted = true }))
	f.Start()

	assert.True(t, mounted)
	assert.Equal(t, "keep", f.HTML("#a"))
	assert.Contains(t, buf.String(), `"message":"render failed"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"component":"card"`)
}
