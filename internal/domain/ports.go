// Package domain holds the ports shared by every use case.
package domain

import "context"

// Transactor runs fn inside a single storage transaction. Repositories called
// with the ctx handed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Hasher produces salted, memory-hard digests of secrets.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
