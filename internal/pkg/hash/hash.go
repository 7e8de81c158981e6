package hash

import "fmt"

// Hash turns plaintext secrets into storable hashes and checks them later.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// NewFromDriver builds the password hasher selected by configuration.
// Supported drivers are "bcrypt" and "argon2id".
func NewFromDriver(driver string, bcryptCost int, pepper string) (Hash, error) {
	switch driver {
	case "", "bcrypt":
		return NewBcrypt(bcryptCost, pepper), nil
	case "argon2id":
		return NewArgon2id(pepper), nil
	default:
		return nil, fmt.Errorf("hash: unsupported driver %q", driver)
	}
}
