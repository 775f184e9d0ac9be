package domain

import "strings"

// TypeShim renders the declaration file written next to a component asset. It
// re-exports the generated module, letting TypeScript pick up the sibling .d.ts.
func TypeShim(relDir, name string) []byte {
	var b strings.Builder
	b.WriteString("export * from '")
	b.WriteString(strings.TrimSuffix(relDir, "/"))
	b.WriteString("/")
	b.WriteString(GlueFile(name))
	b.WriteString("';\n")
	return []byte(b.String())
}
