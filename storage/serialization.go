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


package storage

import (
	"github.com/poiesic/indexit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalKnowledgeObject serializes a KnowledgeObject to bytes.
func MarshalKnowledgeObject(obj *core.KnowledgeObject) []byte {
	buf := make([]byte, core.KnowledgeObjectMUS.Size(*obj))
	core.KnowledgeObjectMUS.Marshal(*obj, buf)
	return buf
}

// UnmarshalKnowledgeObject deserializes a KnowledgeObject from bytes.
func UnmarshalKnowledgeObject(data []byte) (*core.KnowledgeObject, error) {
	obj, _, err := core.KnowledgeObjectMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// MarshalEmbeddedRecord serializes an EmbeddedRecord to bytes.
func MarshalEmbeddedRecord(record *core.EmbeddedRecord) []byte {
	buf := make([]byte, core.EmbeddedRecordMUS.Size(*record))
	core.EmbeddedRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbeddedRecord deserializes an EmbeddedRecord from bytes.
func UnmarshalEmbeddedRecord(data []byte) (*core.EmbeddedRecord, error) {
	record, _, err := core.EmbeddedRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalIndexDescriptor serializes an IndexDescriptor to bytes.
func MarshalIndexDescriptor(desc *core.IndexDescriptor) []byte {
	buf := make([]byte, core.IndexDescriptorMUS.Size(*desc))
	core.IndexDescriptorMUS.Marshal(*desc, buf)
	return buf
}

// UnmarshalIndexDescriptor deserializes an IndexDescriptor from bytes.
func UnmarshalIndexDescriptor(data []byte) (*core.IndexDescriptor, error) {
	desc, _, err := core.IndexDescriptorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &desc, nil
}
