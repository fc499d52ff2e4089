package model

// ManagedDomain is one of an account's managed domains with its verification status.
type ManagedDomain struct {
	Domain string `zoom:"required"`
	Status string
}
