package draft

import "github.com/genzzone/storefront/internal/domain"

// Draft is the customer form plus the line items. It is not persisted until
// a submission succeeds.
type Draft struct {
	Customer domain.Customer
	Lines    Store
}

// New returns an empty draft with the default district preselected.
func New() *Draft {
	return &Draft{Customer: domain.Customer{District: domain.DefaultDistrict}}
}

// Clone returns a structurally independent copy.
func (d *Draft) Clone() Draft {
	return Draft{Customer: d.Customer, Lines: d.Lines.Clone()}
}
