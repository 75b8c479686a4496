// Package sqlbuilder assembles dialect-correct SELECT statements from an
// ordered list of predicates.
//
// Every dialect shares one builder contract (SelectBuilder). The adapters
// differ only in placeholder syntax and pagination; both are delegated to
// github.com/Masterminds/squirrel.
//
// # Injection safety
//
//   - Every predicate value is bound as a placeholder, never interpolated.
//   - Like patterns escape the wildcard metacharacters of caller input with
//     '!' and append the single trailing '%'.
//   - Table and column identifiers are checked against an allow-list given to
//     New; anything else fails Build with ErrUnknownColumn.
//
// Builders are single-use and not safe for concurrent use. Create one per
// statement.
package sqlbuilder
