package domain

// AcquisitionStatus describes how the current user holds a template.
type AcquisitionStatus string

const (
	// StatusFree means the user has neither saved nor bought the template.
	StatusFree AcquisitionStatus = "free"
	// StatusSaved means the template is in the user's saved collection.
	StatusSaved AcquisitionStatus = "saved"
	// StatusPending means a payment proof was submitted and awaits review.
	StatusPending AcquisitionStatus = "pending"
	// StatusBought means the payment was approved.
	StatusBought AcquisitionStatus = "bought"
)

// AcquisitionState is the reconciled status for one (user, template) pair.
type AcquisitionState struct {
	Slug   string            `json:"slug"`
	Status AcquisitionStatus `json:"status"`
	Used   bool              `json:"used"`
}

// CanMarkUsed reports whether the template may be applied to the live profile.
func (s AcquisitionState) CanMarkUsed() bool {
	return s.Status == StatusSaved || s.Status == StatusBought
}

// Purchase is one entry of the bought collection.
type Purchase struct {
	Slug   string            `json:"slug"`
	Status AcquisitionStatus `json:"status"`
}
