package domain

import (
	"fmt"
	"time"

	apperrors "mailsort/internal/platform/errors"
)

type Record struct {
	Subject            string   `json:"subject"`
	Sender             string   `json:"sender"`
	Body               string   `json:"body"`
	Date               string   `json:"date"`
	OriginalCategory   Category `json:"originalCategory"`
	UserClassification Category `json:"userClassification,omitempty"`
}

// LabeledRecord is a copy of a record taken when it was labeled.
type LabeledRecord struct {
	Subject            string    `json:"subject"`
	Sender             string    `json:"sender"`
	Body               string    `json:"body"`
	Date               string    `json:"date"`
	OriginalCategory   Category  `json:"originalCategory"`
	UserClassification Category  `json:"userClassification"`
	ClassifiedAt       time.Time `json:"classifiedAt"`
}

// Session holds loaded records, the cursor to the next unlabeled one and the
// labeled copies in classification order. The cursor only moves forward.
type Session struct {
	records []Record
	cursor  int
	labeled []LabeledRecord
}

func New() *Session {
	return &Session{}
}

// LoadRecords appends records without touching the cursor or labeled list.
func (s *Session) LoadRecords(records []Record) {
	s.records = append(s.records, records...)
}

// Current returns the record under the cursor and its index.
func (s *Session) Current() (Record, int, error) {
	if s.Exhausted() {
		return Record{}, s.cursor, apperrors.ErrExhausted
	}
	return s.records[s.cursor], s.cursor, nil
}

func (s *Session) Exhausted() bool {
	return s.cursor >= len(s.records)
}

// Classify labels the current record, appends its copy and advances the
// cursor by one. Nothing changes when the session is exhausted.
func (s *Session) Classify(label Category, at time.Time) (LabeledRecord, error) {
	if s.Exhausted() {
		return LabeledRecord{}, apperrors.ErrExhausted
	}
	rec := &s.records[s.cursor]
	rec.UserClassification = label
	labeled := LabeledRecord{
		Subject:            rec.Subject,
		Sender:             rec.Sender,
		Body:               rec.Body,
		Date:               rec.Date,
		OriginalCategory:   rec.OriginalCategory,
		UserClassification: label,
		ClassifiedAt:       at,
	}
	s.labeled = append(s.labeled, labeled)
	s.cursor++
	return labeled, nil
}

func (s *Session) Reset() {
	s.records = nil
	s.cursor = 0
	s.labeled = nil
}

func (s *Session) Cursor() int { return s.cursor }

func (s *Session) Len() int { return len(s.records) }

func (s *Session) Records() []Record {
	return append([]Record(nil), s.records...)
}

func (s *Session) Labeled() []LabeledRecord {
	return append([]LabeledRecord(nil), s.labeled...)
}

type Stats struct {
	Total      int
	Labeled    int
	Remaining  int
	Cursor     int
	Percent    float64
	ByLabel    map[Category]int
	BySource   map[Category]int
	Agreements int
}

func (s *Session) Stats() Stats {
	st := Stats{
		Total:     len(s.records),
		Labeled:   len(s.labeled),
		Remaining: len(s.records) - s.cursor,
		Cursor:    s.cursor,
		ByLabel:   map[Category]int{},
		BySource:  map[Category]int{},
	}
	if st.Total > 0 {
		st.Percent = float64(s.cursor) * 100 / float64(st.Total)
	}
	for _, r := range s.records {
		st.BySource[r.OriginalCategory]++
	}
	for _, l := range s.labeled {
		st.ByLabel[l.UserClassification]++
		if l.UserClassification == l.OriginalCategory {
			st.Agreements++
		}
	}
	return st
}

// Snapshot is the persisted layout of a session.
type Snapshot struct {
	Records        []Record        `json:"records"`
	Cursor         int             `json:"cursor"`
	LabeledRecords []LabeledRecord `json:"labeledRecords"`
	Timestamp      time.Time       `json:"timestamp"`
}

func (s *Session) Snapshot(at time.Time) Snapshot {
	return Snapshot{
		Records:        s.Records(),
		Cursor:         s.cursor,
		LabeledRecords: s.Labeled(),
		Timestamp:      at,
	}
}

// FromSnapshot rebuilds a session. An empty snapshot is ErrNothingToRestore;
// a snapshot breaking the cursor bounds is ErrInvalidInput.
func FromSnapshot(snap Snapshot) (*Session, error) {
	if len(snap.Records) == 0 {
		return nil, apperrors.ErrNothingToRestore
	}
	if snap.Cursor < 0 || snap.Cursor > len(snap.Records) {
		return nil, fmt.Errorf("%w: cursor %d outside [0, %d]", apperrors.ErrInvalidInput, snap.Cursor, len(snap.Records))
	}
	if len(snap.LabeledRecords) > snap.Cursor {
		return nil, fmt.Errorf("%w: %d labeled records exceed cursor %d", apperrors.ErrInvalidInput, len(snap.LabeledRecords), snap.Cursor)
	}
	return &Session{
		records: append([]Record(nil), snap.Records...),
		cursor:  snap.Cursor,
		labeled: append([]LabeledRecord(nil), snap.LabeledRecords...),
	}, nil
}
