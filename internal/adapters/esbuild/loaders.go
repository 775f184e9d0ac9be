package esbuild

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/zerr"
)

var loaders = map[string]api.Loader{
	"base64":  api.LoaderBase64,
	"binary":  api.LoaderBinary,
	"copy":    api.LoaderCopy,
	"dataurl": api.LoaderDataURL,
	"empty":   api.LoaderEmpty,
	"file":    api.LoaderFile,
}

var platforms = map[string]api.Platform{
	"node":    api.PlatformNode,
	"browser": api.PlatformBrowser,
	"neutral": api.PlatformNeutral,
}

var formats = map[string]api.Format{
	"esm":  api.FormatESModule,
	"cjs":  api.FormatCommonJS,
	"iife": api.FormatIIFE,
}

// ParseLoader maps a configured pass-through loader name onto esbuild's loader.
func ParseLoader(name string) (api.Loader, error) {
	return lookup(loaders, "wasm_loader", name, domain.DefaultPassthroughLoader)
}

// ParsePlatform maps a configured platform name onto esbuild's platform.
func ParsePlatform(name string) (api.Platform, error) {
	return lookup(platforms, "platform", name, domain.DefaultBuildPlatform)
}

// ParseFormat maps a configured output format onto esbuild's format.
func ParseFormat(name string) (api.Format, error) {
	return lookup(formats, "format", name, domain.DefaultBuildFormat)
}

func lookup[T any](table map[string]T, field, name, fallback string) (T, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = fallback
	}
	v, ok := table[key]
	if !ok {
		var zero T
		return zero, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported value"), "field", field), "value", name)
	}
	return v, nil
}
