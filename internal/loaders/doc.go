// Package loaders dispatches files to format-specific extractors.
//
// Each sub-package implements driven.Loader for one or more domain.Format
// values. The Registry maps every format to exactly one loader; the
// extension allow-list itself lives in the domain package, so the set of
// recognised files and the dispatch table cannot drift apart.
package loaders
