package ports

// PasswordHasher hashes and compares account passwords. Compare returns
// domain.ErrBadCredentials on a mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
