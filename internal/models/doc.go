// Package models defines the domain entities of the staff directory and the persistence interfaces over them.
//
// The package contains two kinds of types:
//
// 1. Records: the entities a user edits
//   - [Employee] : a staff member with location, role and optional contact details
//   - [GradeLevel] : an organizational grade employees may be assigned to by name
//
// 2. Documents: serialized forms of the whole directory
//   - [AppData] : the backup/export document holding every record plus a version stamp
//
// Records implement [Model], which provides identity and form-level validation.
// The [Repository] interface defines the CRUD surface implemented in internal/repositories.
package models
