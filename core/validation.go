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

import "fmt"

// ValidateKnowledgeObject validates a KnowledgeObject according to domain rules.
//
// Validation rules:
//   - Id must be non-zero (identity drives deduplication)
//   - TypeName must not be empty
//   - Field names must be non-empty and unique
//
// NOT validated:
//   - IndexFields entries naming undeclared fields (skipped at indexing time)
//   - Field value types (structural consistency is a caller precondition)
//   - Timestamps (populated by the repository)
//
// Validation is shallow: nested objects are validated when they are
// themselves submitted, which flattening guarantees.
func ValidateKnowledgeObject(obj *KnowledgeObject) error {
	if obj == nil {
		return fmt.Errorf("%w: object is nil", ErrInvalidObject)
	}

	if obj.Id == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidObject, ErrMissingID)
	}

	if obj.TypeName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidObject, ErrEmptyTypeName)
	}

	seen := make(map[string]struct{}, len(obj.Fields))
	for _, field := range obj.Fields {
		if field.Name == "" {
			return fmt.Errorf("%w: %w", ErrInvalidObject, ErrEmptyFieldName)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w: %w: %q", ErrInvalidObject, ErrDuplicateField, field.Name)
		}
		seen[field.Name] = struct{}{}
	}

	return nil
}
