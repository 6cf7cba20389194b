package specification

import "gorm.io/gorm"

// Specification composes query predicates onto a GORM query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
