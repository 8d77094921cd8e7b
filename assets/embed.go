// Package assets bundles the default word lists and SQL migrations into the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed start.txt dictionary.txt
var FS embed.FS

//go:embed sql/*.sql
var migrations embed.FS

// StartWords opens the bundled root word list.
func StartWords() (fs.File, error) {
	return FS.Open("start.txt")
}

// Dictionary opens the bundled English word list.
func Dictionary() (fs.File, error) {
	return FS.Open("dictionary.txt")
}

// Migrations returns the embedded migration files rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
