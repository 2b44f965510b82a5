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

package core

import "errors"

var (
	// ErrInvalidSecurity indicates a Security failed validation.
	ErrInvalidSecurity = errors.New("invalid security")

	// ErrInvalidReference indicates a ReferenceEntry failed validation.
	ErrInvalidReference = errors.New("invalid reference entry")

	// ErrEmptySymbol indicates the Symbol field is blank.
	ErrEmptySymbol = errors.New("symbol cannot be empty")

	// ErrEmptyName indicates the Name field is blank.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyCode indicates a reference code is blank.
	ErrEmptyCode = errors.New("code cannot be empty")

	// ErrInvalidReferenceKind indicates an unknown ReferenceKind value.
	ErrInvalidReferenceKind = errors.New("invalid reference kind")
)
