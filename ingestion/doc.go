// Package ingestion loads securities into the catalog in bulk.
//
// The Pipeline type reads rows from a Source, validates them and writes them
// to the catalog in batches:
//   - Rows without a symbol or name are rejected and counted, never stored
//   - Batches are written concurrently on a worker pool
//   - Transient storage failures are retried with exponential backoff
//   - Currencies, exchanges and security types seen in each batch are
//     recorded as reference data
//
// Progress is checkpointed per source. A resumed run skips the rows a
// previous run already committed.
package ingestion
