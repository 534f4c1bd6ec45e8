// Package printing contains the Printing bounded context.
// It names the documents the service prints, derives their idempotency keys,
// and describes per-record delivery outcomes and per-run summaries.
package printing
