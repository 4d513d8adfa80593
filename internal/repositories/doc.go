// Package repositories implements local persistence for the staff directory.
//
// Records are serialized as JSON documents under fixed keys of a key-value store, mirroring the
// layout of a browser's localStorage. The store itself is a single SQLite table; see [SQLiteStore].
//
// Key Implementations:
//   - [KeyValueStore] : the minimal Get/Set/Remove/Entries surface the persistence layer needs
//   - [SQLiteStore] : KeyValueStore over the kv_store table created by shared migrations
//   - [DataPersistence] : load/validate/save of both record lists, backups, export/import and usage estimates
//   - [EmployeeRepository] : models.Repository for employees, enforcing form rules and grade references
//   - [GradeLevelRepository] : models.Repository for grade levels, enforcing unique names and cascading renames/deletes
//
// Loading is forgiving: corrupt documents yield empty lists and individually malformed records are dropped,
// so one bad entry never hides the rest of the directory. Every save refreshes the automatic backup key.
package repositories
