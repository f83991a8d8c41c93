package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pthm/capsule"
	"github.com/rs/zerolog"
)

// manifest is the toml file listing the components to declare.
type manifest struct {
	Components []componentConfig `toml:"component"`
}

// componentConfig maps one [[component]] table to builder calls.
type componentConfig struct {
	Name      string   `toml:"name"`
	Tags      []string `toml:"tags"`
	Subscribe []string `toml:"subscribe"`
	InnerHTML string   `toml:"inner_html"`
}

func loadManifest(path string) (*manifest, error) {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load manifest: unknown keys %s", strings.Join(keys, ", "))
	}
	if len(m.Components) == 0 {
		return nil, fmt.Errorf("load manifest: %s declares no components", path)
	}
	return &m, nil
}

// mountLog records the elements each component mounted on.
type mountLog map[string][]string

// declare registers every component of m on reg. Mounts are recorded in
// the returned log once the host is ready; published events reaching a
// subscriber are logged.
func (m *manifest) declare(reg *capsule.Registry, log zerolog.Logger) (mountLog, error) {
	mounted := mountLog{}
	for _, cc := range m.Components {
		c, err := reg.Declare(strings.TrimSpace(cc.Name))
		if err != nil {
			return nil, err
		}
		c.Is(cc.Tags...).Sub(cc.Subscribe...)
		if cc.InnerHTML != "" {
			c.InnerHTML(cc.InnerHTML)
		}

		name := c.Name()
		if err := c.On(capsule.EventMount, func(ctx *capsule.Context) {
			mounted[name] = append(mounted[name], ctx.El.String())
		}); err != nil {
			return nil, err
		}

		for _, typ := range cc.Subscribe {
			if typ == "" {
				continue
			}
			if err := c.On(typ, func(ctx *capsule.Context) {
				log.Info().
					Str("component", name).
					Str("event", ctx.Event.Type).
					Stringer("element", ctx.El).
					Msg("received")
			}); err != nil {
				return nil, err
			}
		}
	}
	return mounted, nil
}
