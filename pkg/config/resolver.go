package config

import (
	"fmt"
	"io"
	"strings"

	"cuelang.org/go/cue"
	"github.com/alecthomas/kong"
)

// Loader is a kong.ConfigurationLoader for any supported format.
func Loader(r io.Reader) (kong.Resolver, error) {
	val, err := LoadValueFromReader(r)
	if err != nil {
		return nil, err
	}
	return Resolver(val), nil
}

// Resolver supplies flag defaults from val. Flag "foo-bar" of command
// "dev server" is looked up as dev.server.foo_bar and then as foo_bar.
func Resolver(val cue.Value) kong.Resolver {
	return kong.ResolverFunc(func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		key := strings.ReplaceAll(flag.Name, "-", "_")

		for _, path := range lookupPaths(commandPath(parent), key) {
			v := val.LookupPath(cue.ParsePath(path))
			if !v.Exists() {
				continue
			}
			return scalar(v, path)
		}
		return nil, nil
	})
}

func commandPath(parent *kong.Path) []string {
	if parent == nil {
		return nil
	}
	var names []string
	for n := parent.Node(); n != nil && n.Type == kong.CommandNode; n = n.Parent {
		names = append([]string{strings.ReplaceAll(n.Name, "-", "_")}, names...)
	}
	return names
}

func lookupPaths(cmd []string, key string) []string {
	var paths []string
	for i := len(cmd); i > 0; i-- {
		paths = append(paths, strings.Join(cmd[:i], ".")+"."+key)
	}
	return append(paths, key)
}

// scalar converts v into the string form kong's mappers accept.
func scalar(v cue.Value, path string) (any, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return fmt.Sprint(b), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return fmt.Sprint(i), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return fmt.Sprint(f), nil
	}
	return nil, fmt.Errorf("config key %s: unsupported value kind %s", path, v.IncompleteKind())
}
