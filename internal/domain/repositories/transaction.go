package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// IsolationLevel selects the isolation of a transaction started by ExecTx
type IsolationLevel string

const (
	ReadCommitted IsolationLevel = "read committed"
	Serializable  IsolationLevel = "serializable"
)

// TxOptions configures a transaction
type TxOptions struct {
	Isolation IsolationLevel
}

// TxOption mutates TxOptions
type TxOption func(*TxOptions)

// WithIsolation overrides the default (read committed) isolation level
func WithIsolation(level IsolationLevel) TxOption {
	return func(o *TxOptions) { o.Isolation = level }
}

// ApplyTxOptions resolves options against the defaults
func ApplyTxOptions(opts ...TxOption) TxOptions {
	o := TxOptions{Isolation: ReadCommitted}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TransactionManager handles database transactions.
// Repositories called with the ctx passed to fn participate in the transaction.
// Nested ExecTx calls join the outer transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn, opts ...TxOption) error
}
