// Package datastore describes where a field value lives and how it is read
// back. A DataStore is created by a factory keyed by its type tag (option,
// meta, ...) when the owning field is registered, and reads/writes through an
// injected Backend so the same store types work over memory, SQL, Redis or
// DynamoDB persistence.
package datastore
