// Package id provides unique identifier generation.
package id

import "github.com/google/uuid"

// UUIDGenerator issues random UUIDv4 identifiers. It satisfies the
// IDGenerator contracts of the command and saga packages.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a new random UUID string.
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
