package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"formassist/internal/model"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownProperty = errors.New("unknown answer property")
	ErrOutOfRange      = errors.New("value out of range")
)

// revisions is shared by every store, so a record rebuilt by Reset, Restore
// or a session reload never takes a revision an earlier answer had
var revisions atomic.Int64

func nextRevision() int64 { return revisions.Add(1) }

// Store is the answer state of one module session. It is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	module  *model.Module
	locale  model.Locale
	records map[string]*model.AnswerRecord
}

// NewStore creates a store holding defaults for every question of m
func NewStore(m *model.Module, locale model.Locale) *Store {
	s := &Store{}
	s.Reset(m, locale)
	return s
}

// Reset discards all answers and rebuilds defaults for m
func (s *Store) Reset(m *model.Module, locale model.Locale) {
	s.module = m
	s.locale = locale
	s.records = make(map[string]*model.AnswerRecord, len(m.Questions))
	for i := range m.Questions {
		q := &m.Questions[i]
		s.records[q.ID] = defaultRecord(q)
	}
}

func defaultRecord(q *model.Question) *model.AnswerRecord {
	return &model.AnswerRecord{
		QuestionID: q.ID,
		Value:      DefaultValue(q),
		Rating:     model.RatingMin,
		Length:     model.LengthMin,
		Revision:   nextRevision(),
	}
}

// Module returns the module the store was built for
func (s *Store) Module() *model.Module { return s.module }

// Locale returns the active locale
func (s *Store) Locale() model.Locale { return s.locale }

// Record returns a copy of one question's record
func (s *Store) Record(questionID string) (model.AnswerRecord, bool) {
	rec, ok := s.records[questionID]
	if !ok {
		return model.AnswerRecord{}, false
	}
	return copyRecord(rec), true
}

// Records returns copies of every record in module order
func (s *Store) Records() []model.AnswerRecord {
	out := make([]model.AnswerRecord, 0, len(s.records))
	for _, q := range s.module.Questions {
		out = append(out, copyRecord(s.records[q.ID]))
	}
	return out
}

// Value implements AnswerLookup. Group children resolve through their
// parent's map value.
func (s *Store) Value(questionID string) (model.AnswerValue, bool) {
	if rec, ok := s.records[questionID]; ok {
		return rec.Value, true
	}
	if parent, ok := s.parentOf(questionID); ok {
		v, set := s.records[parent.ID].Value.Fields[questionID]
		return model.ScalarValue(v), set
	}
	return model.AnswerValue{}, false
}

// SetValue replaces the value of a question. Setting a group child updates
// the child's entry in its parent's map.
func (s *Store) SetValue(questionID string, v model.AnswerValue) (model.AnswerRecord, error) {
	if rec, ok := s.records[questionID]; ok {
		rec.Value = v
		return s.touch(rec), nil
	}
	parent, ok := s.parentOf(questionID)
	if !ok {
		return model.AnswerRecord{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	rec := s.records[parent.ID]
	if rec.Value.Kind != model.ValueMap {
		rec.Value = model.MapValue(nil)
	}
	fields := make(map[string]string, len(rec.Value.Fields)+1)
	for k, f := range rec.Value.Fields {
		fields[k] = f
	}
	fields[questionID] = v.String()
	rec.Value = model.MapValue(fields)
	return s.touch(rec), nil
}

// SetRating sets the impact rating; 0 clears it
func (s *Store) SetRating(questionID string, rating int) (model.AnswerRecord, error) {
	rec, err := s.record(questionID)
	if err != nil {
		return model.AnswerRecord{}, err
	}
	if rating < model.RatingUnset || rating > model.RatingMax {
		return model.AnswerRecord{}, fmt.Errorf("%w: rating %d", ErrOutOfRange, rating)
	}
	rec.Rating = rating
	return s.touch(rec), nil
}

// SetLength sets the requested answer length
func (s *Store) SetLength(questionID string, length int) (model.AnswerRecord, error) {
	rec, err := s.record(questionID)
	if err != nil {
		return model.AnswerRecord{}, err
	}
	if length < model.LengthMin || length > model.LengthMax {
		return model.AnswerRecord{}, fmt.Errorf("%w: length %d", ErrOutOfRange, length)
	}
	rec.Length = length
	return s.touch(rec), nil
}

// SetEvidence attaches or (with nil) removes an evidence file
func (s *Store) SetEvidence(questionID string, ref *model.EvidenceRef) (model.AnswerRecord, error) {
	rec, err := s.record(questionID)
	if err != nil {
		return model.AnswerRecord{}, err
	}
	if ref != nil {
		cp := *ref
		ref = &cp
	}
	rec.Evidence = ref
	return s.touch(rec), nil
}

// SetGuidance stores generated guidance if the record still has the given
// revision. It reports whether the guidance was applied.
func (s *Store) SetGuidance(questionID string, revision int64, g *model.ReviewFragment) (bool, error) {
	rec, err := s.record(questionID)
	if err != nil {
		return false, err
	}
	if rec.Revision != revision {
		return false, nil
	}
	rec.Guidance = g
	return true, nil
}

// ReplaceGuidance sets or (with nil) dismisses the guidance shown for an
// answer. The revision is kept, so it does not invalidate a pending request.
func (s *Store) ReplaceGuidance(questionID string, g *model.ReviewFragment) (model.AnswerRecord, error) {
	rec, err := s.record(questionID)
	if err != nil {
		return model.AnswerRecord{}, err
	}
	if g != nil {
		cp := *g
		cp.Tips = append([]string{}, g.Tips...)
		g = &cp
	}
	rec.Guidance = g
	return copyRecord(rec), nil
}

// SetAnswer decodes raw for the named property and applies it
func (s *Store) SetAnswer(questionID string, prop model.Property, raw json.RawMessage) (model.AnswerRecord, error) {
	switch prop {
	case model.PropertyValue:
		var v model.AnswerValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return model.AnswerRecord{}, fmt.Errorf("decode value: %w", err)
		}
		return s.SetValue(questionID, v)
	case model.PropertyRating:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return model.AnswerRecord{}, fmt.Errorf("decode rating: %w", err)
		}
		return s.SetRating(questionID, n)
	case model.PropertyLength:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return model.AnswerRecord{}, fmt.Errorf("decode length: %w", err)
		}
		return s.SetLength(questionID, n)
	case model.PropertyEvidence:
		var ref *model.EvidenceRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return model.AnswerRecord{}, fmt.Errorf("decode evidence: %w", err)
		}
		return s.SetEvidence(questionID, ref)
	case model.PropertyGuidance:
		var g *model.ReviewFragment
		if err := json.Unmarshal(raw, &g); err != nil {
			return model.AnswerRecord{}, fmt.Errorf("decode guidance: %w", err)
		}
		return s.ReplaceGuidance(questionID, g)
	default:
		return model.AnswerRecord{}, fmt.Errorf("%w: %q", ErrUnknownProperty, prop)
	}
}

// Progress returns the persisted form of every record
func (s *Store) Progress() []model.ProgressEntry {
	out := make([]model.ProgressEntry, 0, len(s.records))
	for _, q := range s.module.Questions {
		rec := s.records[q.ID]
		out = append(out, model.ProgressEntry{
			QuestionID: rec.QuestionID,
			Rating:     rec.Rating,
			Length:     rec.Length,
			Value:      rec.Value,
			Evidence:   rec.Evidence,
		})
	}
	return out
}

// Restore merges persisted entries into the current defaults. Unknown
// question ids are ignored and out-of-range numbers keep their default.
func (s *Store) Restore(entries []model.ProgressEntry) {
	for _, e := range entries {
		rec, ok := s.records[e.QuestionID]
		if !ok {
			continue
		}
		if e.Value.Kind != "" {
			rec.Value = e.Value
		}
		if e.Rating >= model.RatingUnset && e.Rating <= model.RatingMax {
			rec.Rating = e.Rating
		}
		if e.Length >= model.LengthMin && e.Length <= model.LengthMax {
			rec.Length = e.Length
		}
		if e.Evidence != nil {
			ev := *e.Evidence
			rec.Evidence = &ev
		}
		rec.Revision = nextRevision()
	}
}

func (s *Store) record(questionID string) (*model.AnswerRecord, error) {
	rec, ok := s.records[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	return rec, nil
}

func (s *Store) parentOf(childID string) (*model.Question, bool) {
	for i := range s.module.Questions {
		q := &s.module.Questions[i]
		for _, c := range q.Children {
			if c.ID == childID {
				return q, true
			}
		}
	}
	return nil, false
}

// touch gives the record a new revision after user input; stale guidance is
// discarded by it
func (s *Store) touch(rec *model.AnswerRecord) model.AnswerRecord {
	rec.Revision = nextRevision()
	return copyRecord(rec)
}

func copyRecord(rec *model.AnswerRecord) model.AnswerRecord {
	out := *rec
	switch rec.Value.Kind {
	case model.ValueList:
		out.Value.List = append([]string{}, rec.Value.List...)
	case model.ValueMap:
		fields := make(map[string]string, len(rec.Value.Fields))
		for k, v := range rec.Value.Fields {
			fields[k] = v
		}
		out.Value.Fields = fields
	}
	if rec.Evidence != nil {
		ev := *rec.Evidence
		out.Evidence = &ev
	}
	if rec.Guidance != nil {
		g := *rec.Guidance
		g.Tips = append([]string{}, rec.Guidance.Tips...)
		out.Guidance = &g
	}
	return out
}
