package domain

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// quotes that may open a JavaScript string literal holding the import specifier.
const quotes = "'\"`"

// RelativeImportDir returns the import prefix that reaches outDir from assetDir.
// The result is slash separated and always starts with "./" or "../", so the
// bundler never mistakes it for a bare package specifier.
func RelativeImportDir(assetDir, outDir string) (string, error) {
	rel, err := filepath.Rel(assetDir, outDir)
	if err != nil {
		return "", zerr.With(zerr.With(errors.Join(ErrRelativePathFailed, err), "from", assetDir), "to", outDir)
	}

	rel = filepath.ToSlash(rel)
	switch {
	case rel == ".":
		return ".", nil
	case rel == "..", strings.HasPrefix(rel, "../"):
		return rel, nil
	default:
		return "./" + rel, nil
	}
}

// CoreImportToken is the self-relative specifier the transpiler emits for a core binary.
func CoreImportToken(coreFile string) string {
	return "./" + coreFile
}

// RewriteImport replaces every quoted occurrence of "./<coreFile>" in glue with
// "<relDir>/<coreFile>". All other bytes are preserved.
//
// It fails with ErrImportTokenNotFound when the token is absent, which is also what
// happens when glue has already been rewritten.
func RewriteImport(glue []byte, coreFile, relDir string) ([]byte, error) {
	token := []byte(CoreImportToken(coreFile))
	replacement := []byte(strings.TrimSuffix(relDir, "/") + "/" + coreFile)

	var out bytes.Buffer
	out.Grow(len(glue) + len(replacement))

	rest := glue
	replaced := 0
	for {
		i := bytes.Index(rest, token)
		if i < 0 {
			break
		}
		start := len(glue) - len(rest) + i
		if start > 0 && strings.IndexByte(quotes, glue[start-1]) >= 0 {
			out.Write(rest[:i])
			out.Write(replacement)
			replaced++
		} else {
			out.Write(rest[:i+len(token)])
		}
		rest = rest[i+len(token):]
	}
	out.Write(rest)

	if replaced == 0 {
		return nil, zerr.With(zerr.Wrap(ErrImportTokenNotFound, "rewrite core import"), "token", string(token))
	}
	return out.Bytes(), nil
}
