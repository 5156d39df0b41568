package order

import (
	"fmt"
	"slices"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle label stored on an order row.
type Status string

const (
	ReadyForDelivery Status = "ready for delivery"
	AlmostReady      Status = "almost ready"
	CourierAssigned  Status = "courier assigned"
	OutForDelivery   Status = "out for delivery"
	Delivered        Status = "delivered"
)

// ReadyStatuses is the default set the Candidate Collector selects from.
func ReadyStatuses() []Status {
	return []Status{ReadyForDelivery, AlmostReady}
}

// QualifyingStatuses is the set of status changes that trigger a dispatch cycle.
func QualifyingStatuses() []Status {
	return []Status{ReadyForDelivery, AlmostReady, CourierAssigned, OutForDelivery, Delivered}
}

// ParseStatus accepts any of the known labels.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s Status) Validate() error {
	if !slices.Contains(QualifyingStatuses(), s) {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", string(s)))
	}
	return nil
}

// IsIn reports whether s belongs to set.
func (s Status) IsIn(set []Status) bool {
	return slices.Contains(set, s)
}

func (s Status) String() string {
	return string(s)
}

// StatusStrings converts a status set for SQL parameters.
func StatusStrings(set []Status) []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = string(s)
	}
	return out
}
