package domain

// ValidationResult is what a validator returns for a contribution. On
// success ID is the only key under which the contribution is retrievable.
type ValidationResult struct {
	ID           string
	IsSuccessful bool
}
