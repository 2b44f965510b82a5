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

// Package reindex rewrites every security in the catalog, restoring the
// symbol and name index entries of each stored record, and refreshes the
// reference tables from the catalog contents.
//
// Records are read in pages straight from primary storage, so a catalog whose
// indexes have fallen out of step with its records is repaired. Writes retry
// with exponential backoff and progress is reported as the walk proceeds.
package reindex
