// Package auth provides a high-level API for persisting and retrieving controller credentials from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"
)

const (
	service = "kasha"
	user    = "controller-token"
)

// SetToken persists the controller API token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the controller API token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the controller API token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}
