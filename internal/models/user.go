// Package models holds the domain records shared by the storage, service and
// HTTP layers.
package models

import "time"

// User is a registered account. PasswordHash is never serialized; records read
// for API responses leave it empty.
type User struct {
	UUID         string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
}
