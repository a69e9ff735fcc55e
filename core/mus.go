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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the core domain types.
//
// Field values are heterogeneous, so they are encoded as a tagged union. On
// the way in, object-valued fields collapse to refs (the graph is persisted
// flattened); on the way out they surface as Ref / []Ref values, which
// HydrateObject can resolve back into nested objects. Numeric scalars widen
// to int64/float64 on round-trip. Value kinds outside the union persist as
// null.

// Field value kind tags. The tag values are part of the storage format.
const (
	valueKindNull byte = iota
	valueKindString
	valueKindInt
	valueKindFloat
	valueKindBool
	valueKindRef
	valueKindRefList
)

// IDMUS serializes IDs.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// normalizeValue reduces a field value to its persisted representative.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64, Ref:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case float32:
		return float64(val)
	case *KnowledgeObject:
		if val == nil {
			return nil
		}
		return Ref(val.Id)
	case []Ref:
		return val
	case []*KnowledgeObject:
		refs := make([]Ref, len(val))
		for i, obj := range val {
			refs[i] = Ref(obj.Id)
		}
		return refs
	case []any:
		objects := ChildObjects(val)
		if objects == nil {
			return nil
		}
		refs := make([]Ref, len(objects))
		for i, obj := range objects {
			refs[i] = Ref(obj.Id)
		}
		return refs
	}
	return nil
}

type fieldValueMUS struct{}

var valueMUS = fieldValueMUS{}

func (fieldValueMUS) Marshal(v any, bs []byte) int {
	switch val := normalizeValue(v).(type) {
	case string:
		bs[0] = valueKindString
		return 1 + ord.String.Marshal(val, bs[1:])
	case int64:
		bs[0] = valueKindInt
		return 1 + varint.Int64.Marshal(val, bs[1:])
	case float64:
		bs[0] = valueKindFloat
		return 1 + raw.Float64.Marshal(val, bs[1:])
	case bool:
		bs[0] = valueKindBool
		return 1 + ord.Bool.Marshal(val, bs[1:])
	case Ref:
		bs[0] = valueKindRef
		return 1 + varint.Uint64.Marshal(uint64(val), bs[1:])
	case []Ref:
		bs[0] = valueKindRefList
		n := 1 + varint.PositiveInt.Marshal(len(val), bs[1:])
		for _, ref := range val {
			n += varint.Uint64.Marshal(uint64(ref), bs[n:])
		}
		return n
	default:
		bs[0] = valueKindNull
		return 1
	}
}

func (fieldValueMUS) Unmarshal(bs []byte) (any, int, error) {
	if len(bs) < 1 {
		return nil, 0, fmt.Errorf("%w: empty value", ErrUnknownValueKind)
	}
	kind := bs[0]
	switch kind {
	case valueKindNull:
		return nil, 1, nil
	case valueKindString:
		v, n, err := ord.String.Unmarshal(bs[1:])
		return v, 1 + n, err
	case valueKindInt:
		v, n, err := varint.Int64.Unmarshal(bs[1:])
		return v, 1 + n, err
	case valueKindFloat:
		v, n, err := raw.Float64.Unmarshal(bs[1:])
		return v, 1 + n, err
	case valueKindBool:
		v, n, err := ord.Bool.Unmarshal(bs[1:])
		return v, 1 + n, err
	case valueKindRef:
		v, n, err := varint.Uint64.Unmarshal(bs[1:])
		return Ref(v), 1 + n, err
	case valueKindRefList:
		length, n, err := varint.PositiveInt.Unmarshal(bs[1:])
		if err != nil {
			return nil, 1 + n, err
		}
		n++
		refs := make([]Ref, length)
		for i := range refs {
			v, rn, err := varint.Uint64.Unmarshal(bs[n:])
			if err != nil {
				return nil, n + rn, err
			}
			refs[i] = Ref(v)
			n += rn
		}
		return refs, n, nil
	}
	return nil, 1, fmt.Errorf("%w: tag %d", ErrUnknownValueKind, kind)
}

func (fieldValueMUS) Size(v any) int {
	switch val := normalizeValue(v).(type) {
	case string:
		return 1 + ord.String.Size(val)
	case int64:
		return 1 + varint.Int64.Size(val)
	case float64:
		return 1 + raw.Float64.Size(val)
	case bool:
		return 1 + ord.Bool.Size(val)
	case Ref:
		return 1 + varint.Uint64.Size(uint64(val))
	case []Ref:
		n := 1 + varint.PositiveInt.Size(len(val))
		for _, ref := range val {
			n += varint.Uint64.Size(uint64(ref))
		}
		return n
	default:
		return 1
	}
}

// Timestamps persist as Unix microseconds; the zero time persists as zero.

func marshalTime(t time.Time, bs []byte) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Marshal(micros, bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Size(micros)
}

// KnowledgeObjectMUS serializes KnowledgeObjects.
var KnowledgeObjectMUS = knowledgeObjectMUS{}

type knowledgeObjectMUS struct{}

func (knowledgeObjectMUS) Marshal(v KnowledgeObject, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.TypeName, bs[n:])
	n += varint.PositiveInt.Marshal(len(v.Fields), bs[n:])
	for _, field := range v.Fields {
		n += ord.String.Marshal(field.Name, bs[n:])
		n += valueMUS.Marshal(field.Value, bs[n:])
	}
	n += varint.PositiveInt.Marshal(len(v.IndexFields), bs[n:])
	for _, name := range v.IndexFields {
		n += ord.String.Marshal(name, bs[n:])
	}
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (knowledgeObjectMUS) Unmarshal(bs []byte) (KnowledgeObject, int, error) {
	var obj KnowledgeObject
	id, n, err := IDMUS.Unmarshal(bs)
	if err != nil {
		return obj, n, err
	}
	obj.Id = id

	typeName, tn, err := ord.String.Unmarshal(bs[n:])
	n += tn
	if err != nil {
		return obj, n, err
	}
	obj.TypeName = typeName

	fieldCount, fn, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += fn
	if err != nil {
		return obj, n, err
	}
	if fieldCount > 0 {
		obj.Fields = make([]Field, fieldCount)
		for i := range obj.Fields {
			name, nn, err := ord.String.Unmarshal(bs[n:])
			n += nn
			if err != nil {
				return obj, n, err
			}
			value, vn, err := valueMUS.Unmarshal(bs[n:])
			n += vn
			if err != nil {
				return obj, n, err
			}
			obj.Fields[i] = Field{Name: name, Value: value}
		}
	}

	indexCount, in, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += in
	if err != nil {
		return obj, n, err
	}
	if indexCount > 0 {
		obj.IndexFields = make([]string, indexCount)
		for i := range obj.IndexFields {
			name, nn, err := ord.String.Unmarshal(bs[n:])
			n += nn
			if err != nil {
				return obj, n, err
			}
			obj.IndexFields[i] = name
		}
	}

	inserted, tn2, err := unmarshalTime(bs[n:])
	n += tn2
	if err != nil {
		return obj, n, err
	}
	obj.InsertedAt = inserted

	updated, tn3, err := unmarshalTime(bs[n:])
	n += tn3
	if err != nil {
		return obj, n, err
	}
	obj.UpdatedAt = updated

	return obj, n, nil
}

func (knowledgeObjectMUS) Size(v KnowledgeObject) int {
	n := IDMUS.Size(v.Id)
	n += ord.String.Size(v.TypeName)
	n += varint.PositiveInt.Size(len(v.Fields))
	for _, field := range v.Fields {
		n += ord.String.Size(field.Name)
		n += valueMUS.Size(field.Value)
	}
	n += varint.PositiveInt.Size(len(v.IndexFields))
	for _, name := range v.IndexFields {
		n += ord.String.Size(name)
	}
	n += sizeTime(v.InsertedAt)
	n += sizeTime(v.UpdatedAt)
	return n
}

// EmbeddedRecordMUS serializes EmbeddedRecords.
var EmbeddedRecordMUS = embeddedRecordMUS{}

type embeddedRecordMUS struct{}

func (embeddedRecordMUS) Marshal(v EmbeddedRecord, bs []byte) int {
	n := IDMUS.Marshal(v.ObjectId, bs)
	n += ord.String.Marshal(v.TypeName, bs[n:])
	n += ord.String.Marshal(v.FieldName, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.PositiveInt.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	n += marshalTime(v.InsertedAt, bs[n:])
	return n
}

func (embeddedRecordMUS) Unmarshal(bs []byte) (EmbeddedRecord, int, error) {
	var rec EmbeddedRecord
	id, n, err := IDMUS.Unmarshal(bs)
	if err != nil {
		return rec, n, err
	}
	rec.ObjectId = id

	for _, dst := range []*string{&rec.TypeName, &rec.FieldName, &rec.Text} {
		s, sn, err := ord.String.Unmarshal(bs[n:])
		n += sn
		if err != nil {
			return rec, n, err
		}
		*dst = s
	}

	length, ln, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += ln
	if err != nil {
		return rec, n, err
	}
	if length > 0 {
		rec.Vector = make([]float32, length)
		for i := range rec.Vector {
			f, fn, err := raw.Float32.Unmarshal(bs[n:])
			n += fn
			if err != nil {
				return rec, n, err
			}
			rec.Vector[i] = f
		}
	}

	inserted, tn, err := unmarshalTime(bs[n:])
	n += tn
	if err != nil {
		return rec, n, err
	}
	rec.InsertedAt = inserted

	return rec, n, nil
}

func (embeddedRecordMUS) Size(v EmbeddedRecord) int {
	n := IDMUS.Size(v.ObjectId)
	n += ord.String.Size(v.TypeName)
	n += ord.String.Size(v.FieldName)
	n += ord.String.Size(v.Text)
	n += varint.PositiveInt.Size(len(v.Vector))
	for _, f := range v.Vector {
		n += raw.Float32.Size(f)
	}
	n += sizeTime(v.InsertedAt)
	return n
}

// IndexDescriptorMUS serializes IndexDescriptors.
var IndexDescriptorMUS = indexDescriptorMUS{}

type indexDescriptorMUS struct{}

func (indexDescriptorMUS) Marshal(v IndexDescriptor, bs []byte) int {
	n := ord.String.Marshal(v.TypeName, bs)
	n += ord.String.Marshal(v.FieldName, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (indexDescriptorMUS) Unmarshal(bs []byte) (IndexDescriptor, int, error) {
	var desc IndexDescriptor
	typeName, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return desc, n, err
	}
	desc.TypeName = typeName

	fieldName, fn, err := ord.String.Unmarshal(bs[n:])
	n += fn
	if err != nil {
		return desc, n, err
	}
	desc.FieldName = fieldName

	created, tn, err := unmarshalTime(bs[n:])
	n += tn
	if err != nil {
		return desc, n, err
	}
	desc.CreatedAt = created

	return desc, n, nil
}

func (indexDescriptorMUS) Size(v IndexDescriptor) int {
	n := ord.String.Size(v.TypeName)
	n += ord.String.Size(v.FieldName)
	n += sizeTime(v.CreatedAt)
	return n
}
