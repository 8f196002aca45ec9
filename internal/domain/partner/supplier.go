package partner

import (
	"regexp"
	"strings"

	"github.com/tims/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
	SupplierStatusPending  SupplierStatus = "pending"
)

// IsValid returns true if the status is one of the known values
func (s SupplierStatus) IsValid() bool {
	switch s {
	case SupplierStatusActive, SupplierStatusInactive, SupplierStatusPending:
		return true
	}
	return false
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Supplier represents an equipment vendor.
// A supplier that still owns inventory items cannot be deleted.
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string         `gorm:"type:varchar(200);not null;index" json:"name"`
	ContactPerson string         `gorm:"type:varchar(100)" json:"contact_person"`
	Email         string         `gorm:"type:varchar(200)" json:"email"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	Status        SupplierStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	// Populated by read queries
	PendingOrders int64 `gorm:"->;-:migration" json:"pending_orders"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierAttributes carries the editable fields of a supplier
type SupplierAttributes struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Status        SupplierStatus
}

func (a SupplierAttributes) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return shared.NewValidationError("Name is required")
	}
	if len(a.Name) > 200 {
		return shared.NewValidationError("Name cannot exceed 200 characters")
	}
	if a.Email != "" && !emailRegex.MatchString(strings.TrimSpace(a.Email)) {
		return shared.NewValidationError("Valid email is required")
	}
	if !a.Status.IsValid() {
		return shared.NewValidationError("Invalid status")
	}
	return nil
}

// NewSupplier creates a new supplier
func NewSupplier(attrs SupplierAttributes) (*Supplier, error) {
	if err := attrs.validate(); err != nil {
		return nil, err
	}
	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	s.assign(attrs)
	s.AddDomainEvent(NewSupplierCreatedEvent(s))
	return s, nil
}

// Update replaces every editable field
func (s *Supplier) Update(attrs SupplierAttributes) error {
	if err := attrs.validate(); err != nil {
		return err
	}
	s.assign(attrs)
	s.Touch()
	s.IncrementVersion()
	return nil
}

func (s *Supplier) assign(attrs SupplierAttributes) {
	s.Name = strings.TrimSpace(attrs.Name)
	s.ContactPerson = strings.TrimSpace(attrs.ContactPerson)
	s.Email = strings.ToLower(strings.TrimSpace(attrs.Email))
	s.Phone = strings.TrimSpace(attrs.Phone)
	s.Address = attrs.Address
	s.Status = attrs.Status
}
