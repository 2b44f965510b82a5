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

import (
	"fmt"
	"strings"
)

// ValidateSecurity validates a Security according to domain rules.
//
// Validation rules:
//   - Symbol must not be blank
//   - Name must not be blank
//
// Rows failing these rules are not searchable and never enter the catalog.
// Identifier codes (FIGI, CFI, ISIN, CUSIP) are opaque and not validated.
func ValidateSecurity(security *Security) error {
	if security == nil {
		return fmt.Errorf("%w: security is nil", ErrInvalidSecurity)
	}

	if strings.TrimSpace(security.Symbol) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSecurity, ErrEmptySymbol)
	}

	if strings.TrimSpace(security.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSecurity, ErrEmptyName)
	}

	return nil
}

// ValidateReference validates a ReferenceEntry.
func ValidateReference(entry *ReferenceEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidReference)
	}

	if err := ValidateReferenceKind(entry.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}

	if strings.TrimSpace(entry.Code) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidReference, ErrEmptyCode)
	}

	return nil
}

// ValidateReferenceKind validates that a ReferenceKind has a valid value.
func ValidateReferenceKind(kind ReferenceKind) error {
	switch kind {
	case ReferenceCurrency, ReferenceExchange, ReferenceSecurityType:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidReferenceKind, kind)
	}
}
