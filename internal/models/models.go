// package models defines the data model for the staff directory
package models

// Model defines the base interface for all persistent records in the directory.
// Implementations are [Employee] and [GradeLevel].
type Model interface {
	Identifier() string // Identifier returns the unique identifier for this record
	Validate() error    // Validate checks the record the way the edit form does and returns an error if not valid
}

// Repository defines the interface for data access operations.
// Implementations handle storage interactions for specific record types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new record, assigning an ID when blank
	Get(id string) (T, error)                  // Get retrieves a record by its ID
	Update(model T) error                      // Update replaces an existing record with the same ID
	Delete(id string) error                    // Delete removes a record by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all records matching the given criteria
}
