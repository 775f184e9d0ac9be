package domain

// LoaderKind tells the host bundler how to interpret returned contents.
type LoaderKind uint8

const (
	// LoaderDefault leaves the host's own loader for the file extension in charge.
	LoaderDefault LoaderKind = iota
	// LoaderTS marks the contents as TypeScript-compatible source.
	LoaderTS
)

// String returns the loader name.
func (l LoaderKind) String() string {
	if l == LoaderTS {
		return "ts"
	}
	return "default"
}

// LoadRequest is one asset load event from the host.
type LoadRequest struct {
	// Path is the asset path as reported by the host, absolute or relative to the working directory.
	Path string
}

// LoadResult is what the host receives back for a load event.
type LoadResult struct {
	Loader     LoaderKind
	Contents   []byte
	ResolveDir string
	WatchFiles []string
	// Kind is the detected kind of the asset.
	Kind Kind
	// Folder is the generation folder used, empty for pass-through results.
	Folder string
}

// Substituted reports whether the contents were replaced by generated glue.
func (r LoadResult) Substituted() bool {
	return r.Loader == LoaderTS
}
