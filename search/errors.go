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

package search

import "errors"

var (
	// ErrCatalogRequired is returned when a catalog is not provided.
	ErrCatalogRequired = errors.New("catalog required")

	// ErrRegistryRequired is returned when a nil strategy registry is provided.
	ErrRegistryRequired = errors.New("strategy registry required")

	// ErrValidation marks input rejected before any catalog access.
	ErrValidation = errors.New("validation failed")

	// ErrBlankQuery is returned when free-text input is blank after trimming.
	ErrBlankQuery = errors.New("query must not be blank")

	// ErrNoCriteria is returned when every advanced search criterion is blank.
	ErrNoCriteria = errors.New("at least one search criterion is required")

	// ErrLimitOutOfRange is returned when a limit is outside its allowed range.
	ErrLimitOutOfRange = errors.New("limit out of range")

	// ErrRetrieval wraps a failure of the underlying catalog.
	ErrRetrieval = errors.New("catalog retrieval failed")
)
