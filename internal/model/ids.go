package model

import "github.com/google/uuid"

// ValidRepositoryID reports whether id is a version 4 UUID in canonical
// lowercase form.
func ValidRepositoryID(id string) bool {
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122 && u.String() == id
}
