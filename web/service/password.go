package service

import (
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// hashGate bounds the number of concurrent bcrypt computations so a burst
// of registrations cannot starve request dispatch of CPU.
var hashGate = make(chan struct{}, runtime.GOMAXPROCS(0))

func hashPassword(password string, cost int) (string, error) {
	hashGate <- struct{}{}
	defer func() { <-hashGate }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	hashGate <- struct{}{}
	defer func() { <-hashGate }()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
