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

// Package search implements ticker typeahead and advanced structured search
// over a securities catalog.
//
// Free-text queries run through CandidateSearch, which retrieves in two
// phases:
//   - Exact phase: rows whose symbol or name equals the query
//   - Partial phase: rows whose symbol or name contains the query, filling
//     whatever capacity the exact phase left
//
// Exact matches always precede partial matches. Within a phase rows are
// ordered by symbol. Rows are never repeated.
//
// Structured queries run through QueryBuilder, which turns the non-blank
// criteria into a single conjunctive contains filter and queries the
// catalog once.
//
// The Searcher type validates input and limits before any catalog access and
// reports failures as ErrValidation or ErrRetrieval.
package search
