// Package esbuild connects the asset interceptor to the esbuild bundler.
package esbuild

import (
	"context"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
)

// PluginName is reported by esbuild next to messages raised by the plugin.
const PluginName = "witshim"

// WasmFilter matches every asset the plugin intercepts.
const WasmFilter = `\.wasm$`

type pluginOptions struct {
	ctx     context.Context //nolint:containedctx // esbuild callbacks carry no context
	onError func(path string, err error)
}

// PluginOption configures NewPlugin.
type PluginOption func(*pluginOptions)

// WithContext sets the context passed to the loader for every load event.
func WithContext(ctx context.Context) PluginOption {
	return func(o *pluginOptions) {
		o.ctx = ctx
	}
}

// WithErrorHandler registers a callback invoked with every load failure before
// esbuild flattens it into a message.
func WithErrorHandler(fn func(path string, err error)) PluginOption {
	return func(o *pluginOptions) {
		o.onError = fn
	}
}

// NewPlugin returns an esbuild plugin that routes .wasm loads in the file namespace through loader.
func NewPlugin(loader ports.AssetLoader, opts ...PluginOption) api.Plugin {
	o := pluginOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: WasmFilter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					res, err := loader.Load(o.ctx, domain.LoadRequest{Path: args.Path})
					if err != nil {
						if o.onError != nil {
							o.onError(args.Path, err)
						}
						return api.OnLoadResult{}, err
					}
					return toOnLoadResult(res), nil
				})
		},
	}
}

// toOnLoadResult leaves Contents nil for pass-through results so esbuild falls back
// to the loader configured for the extension.
func toOnLoadResult(res domain.LoadResult) api.OnLoadResult {
	out := api.OnLoadResult{
		PluginName: PluginName,
		WatchFiles: res.WatchFiles,
	}
	if !res.Substituted() {
		return out
	}

	contents := string(res.Contents)
	out.Contents = &contents
	out.ResolveDir = res.ResolveDir
	out.Loader = api.LoaderTS
	return out
}
