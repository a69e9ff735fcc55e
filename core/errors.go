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

// Domain validation errors
var (
	// ErrInvalidObject indicates a KnowledgeObject failed validation.
	ErrInvalidObject = errors.New("invalid knowledge object")

	// ErrMissingID indicates an object has no identifier.
	ErrMissingID = errors.New("object id is required")

	// ErrEmptyTypeName indicates the TypeName field is empty.
	ErrEmptyTypeName = errors.New("type name cannot be empty")

	// ErrEmptyFieldName indicates a field with no name.
	ErrEmptyFieldName = errors.New("field name cannot be empty")

	// ErrDuplicateField indicates two fields share a name.
	ErrDuplicateField = errors.New("duplicate field name")

	// ErrUnknownValueKind indicates a serialized field value carries an
	// unrecognized kind tag.
	ErrUnknownValueKind = errors.New("unknown field value kind")
)
