package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm/capsule/lib/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
[[component]]
name = "card"
tags = ["shadow", "rounded"]
inner_html = "<h2>Card</h2>"

[[component]]
name = "cart"
subscribe = ["cart:updated"]
`

const testPage = `<html><body>
<div id="a" class="card"></div>
<div id="b" class="card"></div>
<aside id="c" class="cart"></aside>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestLoadManifest(t *testing.T) {
	m, err := loadManifest(writeFile(t, "capsule.toml", testManifest))
	require.NoError(t, err)
	require.Len(t, m.Components, 2)
	assert.Equal(t, componentConfig{
		Name:      "card",
		Tags:      []string{"shadow", "rounded"},
		InnerHTML: "<h2>Card</h2>",
	}, m.Components[0])
	assert.Equal(t, []string{"cart:updated"}, m.Components[1].Subscribe)
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[[component]]\nname = \"x\"\ncolour = \"red\"\n", "unknown keys component.colour"},
		{"empty", "# nothing\n", "declares no components"},
		{"syntax", "[[component]\n", "load manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadManifest(writeFile(t, "capsule.toml", tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := loadManifest(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	manifest := writeFile(t, "capsule.toml", testManifest)
	page := writeFile(t, "page.html", testPage)

	out, _, err := run(t, "scan", "-m", manifest, page)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "COMPONENT")
	assert.Regexp(t, `^card\s+2\s+\[`, lines[1])
	assert.Contains(t, lines[1], "div#a.card.card-💊.shadow.rounded div#b.card")
	assert.Regexp(t, `^cart\s+1\s+\[aside#c\.cart`, lines[2])
}

func TestRender(t *testing.T) {
	manifest := writeFile(t, "capsule.toml", testManifest)
	page := writeFile(t, "page.html", testPage)

	out, errOut, err := run(t, "render", "-m", manifest, "--publish", "cart:updated", page)
	require.NoError(t, err)

	assert.Contains(t, out, `<div id="a" class="card card-💊 shadow rounded"><h2>Card</h2></div>`)
	assert.Contains(t, out, `class="cart cart-💊 sub:cart:updated"`)
	assert.Contains(t, errOut, "received")
	assert.Contains(t, errOut, "cart:updated")
}

func TestRenderToFile(t *testing.T) {
	manifest := writeFile(t, "capsule.toml", testManifest)
	page := writeFile(t, "page.html", testPage)
	target := filepath.Join(t.TempDir(), "out.html")

	out, _, err := run(t, "render", "-m", manifest, "-o", target, page)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "card-💊")
}

func TestRenderOutputErrors(t *testing.T) {
	manifest := writeFile(t, "capsule.toml", testManifest)
	page := writeFile(t, "page.html", testPage)

	_, _, err := run(t, "render", "-m", manifest, "-o", t.TempDir(), page)
	assert.Error(t, err)

	doc, err := dom.ParseString(testPage)
	require.NoError(t, err)
	target := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, writePage(target, doc))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<aside id="c" class="cart">`)
}

func TestDuplicateComponentInManifest(t *testing.T) {
	manifest := writeFile(t, "capsule.toml", "[[component]]\nname = \"x\"\n[[component]]\nname = \"x\"\n")
	page := writeFile(t, "page.html", testPage)

	_, _, err := run(t, "scan", "-m", manifest, page)
	assert.ErrorContains(t, err, "already declared")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "capsule version "+version+"\n", out)
}
