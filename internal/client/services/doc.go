// Package services binds the endpoints of the remote API to typed queries
// and mutations. Every read is keyed through package keys, every write
// declares the key prefixes it invalidates, and tenant-scoped calls take
// the company (and station) explicitly.
package services
