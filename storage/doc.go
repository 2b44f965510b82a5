// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage provides the storage abstraction layer for tickerdex.
//
// This package defines the repository interfaces the search core and the
// ingestion job depend on. The search core only needs the query contract of
// CatalogRepository (ExactMatch, PartialMatch, FilteredMatch); the remaining
// operations exist for ingestion and reference-data lookups.
//
// # Architecture
//
//   - Repository: operations shared by every repository (transactions, Close)
//   - CatalogRepository: securities and the three search queries
//   - ReferenceRepository: currencies, exchanges and security types
//   - CheckpointRepository: ingestion progress per source
//   - Filter: a compiled conjunctive filter passed to FilteredMatch
//
// # Ordering
//
// Every query returns rows ordered by case-folded symbol, ties broken by
// surrogate ID, so identical calls against an unchanged catalog return
// identical results.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	catalog, refs, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer func() { refs.Close(); catalog.Close(); backend.Close() }()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
