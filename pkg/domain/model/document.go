package model

import (
	"sort"
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// Confidence tags a citation with how trustworthy its source is judged
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Citation links a curated statement back to its source
type Citation struct {
	SourceID    string
	SourceURL   string
	RetrievedAt time.Time
	Confidence  Confidence
}

// Section is one curated topic of a knowledge document
type Section struct {
	Topic     string
	Text      string
	Citations []Citation
	UpdatedAt time.Time
}

// Document is the authoritative compiled knowledge about one company.
// Exactly one version is current at any time; prior versions live in the
// append-only archive of the document store.
type Document struct {
	Slug      types.CompanySlug
	Sections  map[string]*Section
	UpdatedAt time.Time
}

// NewDocument creates an empty document for a company
func NewDocument(slug types.CompanySlug) *Document {
	return &Document{
		Slug:     slug,
		Sections: make(map[string]*Section),
	}
}

// Section returns the section for a topic, or nil
func (d *Document) Section(topic string) *Section {
	if d == nil || d.Sections == nil {
		return nil
	}
	return d.Sections[topic]
}

// SetSection installs or replaces the curated text of a topic
func (d *Document) SetSection(topic, text string, citations []Citation, now time.Time) {
	if d.Sections == nil {
		d.Sections = make(map[string]*Section)
	}
	d.Sections[topic] = &Section{
		Topic:     topic,
		Text:      text,
		Citations: citations,
		UpdatedAt: now,
	}
	d.UpdatedAt = now
}

// AppendCitation adds a citation to an existing topic section without
// changing its text. Used when new evidence only corroborates what is
// already curated.
func (d *Document) AppendCitation(topic string, c Citation, now time.Time) bool {
	sec := d.Section(topic)
	if sec == nil {
		return false
	}
	sec.Citations = append(sec.Citations, c)
	sec.UpdatedAt = now
	d.UpdatedAt = now
	return true
}

// Topics returns the section topics in stable order
func (d *Document) Topics() []string {
	topics := make([]string, 0, len(d.Sections))
	for topic := range d.Sections {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	copied := &Document{
		Slug:      d.Slug,
		Sections:  make(map[string]*Section, len(d.Sections)),
		UpdatedAt: d.UpdatedAt,
	}
	for topic, sec := range d.Sections {
		s := &Section{
			Topic:     sec.Topic,
			Text:      sec.Text,
			UpdatedAt: sec.UpdatedAt,
		}
		if sec.Citations != nil {
			s.Citations = make([]Citation, len(sec.Citations))
			copy(s.Citations, sec.Citations)
		}
		copied.Sections[topic] = s
	}
	return copied
}

// ArchivedDocument is one frozen prior version of a document
type ArchivedDocument struct {
	Key      types.VersionKey
	Document *Document
}
