// Package idempotency tracks which checkout requests have already been
// turned into orders, so at-least-once redelivery does not create
// duplicate rows.
package idempotency

import "context"

// Guard maps a request-scoped idempotency key to the orderDate of the
// order it produced. A key with an empty result has not been seen.
type Guard interface {
	Seen(ctx context.Context, key string) (string, error)
	Record(ctx context.Context, key, orderDate string) error
}
