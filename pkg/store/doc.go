// Package store persists exported board fragments by name.
//
// A fragment is the JSON produced by [iiif.WriteJSON]. Stores live outside
// the board core: the CLI push and pull commands and the HTTP server use
// them to share fragments between workstations.
//
// Three backends are provided:
//
//   - [FileStore] keeps one JSON file per board in a directory and can
//     watch it for saves by other processes.
//   - [SQLiteStore] keeps every board in one SQLite database file.
//   - [RedisStore] keeps fragments in redis under a namespace and publishes
//     the board name on every save, so other processes can reload.
//
// Board names are validated with [errors.ValidateBoardName]. Loading a
// missing board returns an error with code NOT_FOUND.
package store
