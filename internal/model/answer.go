package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Rating and length bounds for an answer record
const (
	RatingUnset = 0
	RatingMin   = 1
	RatingMax   = 6
	LengthMin   = 1
	LengthMax   = 4
)

// ValueKind tags the shape held by an AnswerValue
type ValueKind string

const (
	ValueScalar ValueKind = "scalar"
	ValueList   ValueKind = "list"
	ValueMap    ValueKind = "map" // Child values of a group, keyed by child id
)

// AnswerValue is a scalar, a list or a map of child values
type AnswerValue struct {
	Kind   ValueKind
	Scalar string
	List   []string
	Fields map[string]string
}

// ScalarValue wraps a single string answer
func ScalarValue(s string) AnswerValue {
	return AnswerValue{Kind: ValueScalar, Scalar: s}
}

// ListValue wraps a multi-select answer
func ListValue(items ...string) AnswerValue {
	if items == nil {
		items = []string{}
	}
	return AnswerValue{Kind: ValueList, List: items}
}

// MapValue wraps the child answers of a group
func MapValue(fields map[string]string) AnswerValue {
	if fields == nil {
		fields = map[string]string{}
	}
	return AnswerValue{Kind: ValueMap, Fields: fields}
}

// IsEmpty reports whether the value holds no user input
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case ValueList:
		return len(v.List) == 0
	case ValueMap:
		for _, f := range v.Fields {
			if f != "" {
				return false
			}
		}
		return true
	default:
		return v.Scalar == ""
	}
}

// String renders the value the way predicates compare it
func (v AnswerValue) String() string {
	switch v.Kind {
	case ValueList:
		return strings.Join(v.List, ",")
	case ValueMap:
		keys := make([]string, 0, len(v.Fields))
		for k := range v.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+v.Fields[k])
		}
		return strings.Join(pairs, ", ")
	default:
		return v.Scalar
	}
}

// Equal compares two values by kind and content
func (v AnswerValue) Equal(other AnswerValue) bool {
	if v.kind() != other.kind() {
		return false
	}
	switch v.kind() {
	case ValueList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != other.List[i] {
				return false
			}
		}
		return true
	case ValueMap:
		if len(v.Fields) != len(other.Fields) {
			return false
		}
		for k, f := range v.Fields {
			if of, ok := other.Fields[k]; !ok || of != f {
				return false
			}
		}
		return true
	default:
		return v.Scalar == other.Scalar
	}
}

func (v AnswerValue) kind() ValueKind {
	if v.Kind == "" {
		return ValueScalar
	}
	return v.Kind
}

// MarshalJSON encodes scalars as strings, lists as arrays and maps as objects
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind() {
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case ValueMap:
		if v.Fields == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Fields)
	default:
		return json.Marshal(v.Scalar)
	}
}

// UnmarshalJSON accepts any JSON value; numbers and booleans become scalars
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ScalarValue("")
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ScalarValue(s)
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, item := range raw {
			items = append(items, stringify(item))
		}
		*v = ListValue(items...)
	case '{':
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		fields := make(map[string]string, len(raw))
		for k, item := range raw {
			fields[k] = stringify(item)
		}
		*v = MapValue(fields)
	default:
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return err
		}
		*v = ScalarValue(stringify(scalar))
	}
	return nil
}

func stringify(item any) string {
	switch t := item.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// EvidenceRef points at an uploaded evidence file; exports use FileName only
type EvidenceRef struct {
	FileID   string `json:"fileId" bson:"fileId"`
	FileName string `json:"fileName" bson:"fileName"`
	MIMEType string `json:"mimeType" bson:"mimeType"`
	Size     int64  `json:"size" bson:"size"`
}

// AnswerRecord is the live state of one question within a session
type AnswerRecord struct {
	QuestionID string          `json:"questionId"`
	Value      AnswerValue     `json:"value"`
	Rating     int             `json:"rating"`
	Length     int             `json:"length"`
	Evidence   *EvidenceRef    `json:"evidence,omitempty"`
	Guidance   *ReviewFragment `json:"guidance,omitempty"`
	Revision   int64           `json:"revision"`
}

// Property names a mutable field of an AnswerRecord
type Property string

const (
	PropertyValue    Property = "value"
	PropertyRating   Property = "rating"
	PropertyLength   Property = "length"
	PropertyEvidence Property = "evidence"
	PropertyGuidance Property = "guidance"
)

// ProgressEntry is the persisted shape of one answer record
type ProgressEntry struct {
	QuestionID string       `json:"questionId"`
	Rating     int          `json:"rating"`
	Length     int          `json:"length"`
	Value      AnswerValue  `json:"value"`
	Evidence   *EvidenceRef `json:"evidence,omitempty"`
}
