// Package records persists inspection submissions and their verdicts in
// SQLite. The analysis pipelines themselves are stateless; every durable
// write flows through this store.
package records
