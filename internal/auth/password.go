package auth

import "golang.org/x/crypto/bcrypt"

// hashPassword returns a bcrypt digest using the configured cost. bcrypt is
// deliberately CPU-heavy; it runs on the request's own goroutine and never
// blocks unrelated handlers.
func hashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// verifyPassword safely compares a bcrypt digest and a plain password.
func verifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
