package onboarding

import "context"

// Repository persists onboarding accounts
type Repository interface {
	Save(ctx context.Context, account *Account) error
	FindByAccountID(ctx context.Context, accountID string) (*Account, error)
	FindByNationalIDHash(ctx context.Context, hash string) (*Account, error)
}

// Decrypter opens the encrypted applicant payload submitted by the TPP
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext string) ([]byte, error)
}

// ScreeningResult is the outcome of a sanctions screening call
type ScreeningResult struct {
	Clear  bool
	Reason string
}

// ScreeningCheck runs sanctions screening on an applicant
type ScreeningCheck interface {
	Screen(ctx context.Context, fullName, nationalID string) (ScreeningResult, error)
}
