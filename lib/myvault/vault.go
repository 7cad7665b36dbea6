package myvault

import (
	"context"

	"github.com/MarcGrol/shopcheckout/lib/mystore"
)

const (
	CurrentToken = "currentToken"
)

// TokenUID is the uid under which the current access token of a payment provider is kept
func TokenUID(providerName string) string {
	return CurrentToken + "_" + providerName
}

type VaultReader[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
}

type VaultReadWriter[T any] interface {
	VaultReader[T]
	Put(c context.Context, uid string, value T) error
}

func New[T any](c context.Context) (VaultReadWriter[T], func(), error) {
	return mystore.New[T](c)
}
