// Package models defines domain entities and persistence interfaces for the crate review catalog.
//
// The package contains two categories of types:
//
// 1. Domain entities: the matched album collection and its parts
//   - [Album] : Catalog-identified album with local favorite/listened flags
//   - [Artist], [Image] : Owned sub-records of an Album
//   - [Review] : Immutable editorial review record attached at match time
//   - [Filter] : Active view criteria, applied as an AND across set fields
//
// 2. Persistent entities: database-backed wrappers with full lifecycle management
//   - [PersistedAlbum] : Cached collection entry with sequence and soft delete support
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps,
// validation, and soft delete support. The [Repository] interface defines standard CRUD
// operations for database access.
package models
