// Package extractor declares the external collaborator interfaces the
// core depends on for document retrieval and study-card extraction
// (§6). No concrete implementation lives here — both are other teams'
// services; the core only needs the contract (Non-goals: "building a
// PDF/HTML parser or an LLM extraction pipeline").
package extractor

import (
	"context"
	"time"
)

// FetchedDocument is what a DocumentFetcher returns for one URL (§6).
type FetchedDocument struct {
	ContentBytes []byte
	ContentType  string
	Headers      map[string]string
	SHA256       string
	PublishedAt  *time.Time
	StorageURI   string // populated if the fetcher uploaded to a blob store
}

// DocumentFetcher retrieves a document's raw bytes and, when a blob
// store is configured, persists them and returns a storage URI. It must
// fail loudly if no storage is configured rather than silently falling
// back to a local path (§6).
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (FetchedDocument, error)
}

// TextChunk is one unit of extracted document text, page/paragraph
// addressable so every numeric claim can carry an evidence span (§6).
type TextChunk struct {
	Page      int
	Paragraph int
	Text      string
}

// TrialHint is the minimal trial context an extractor can use to
// disambiguate which numbers in a document belong to the trial being
// scored (§6).
type TrialHint struct {
	TrialID    string
	BriefTitle string
	Phase      string
}

// EvidenceSpan locates the source text a numeric field was extracted
// from (§6: "{scheme:\"page_paragraph\", page, paragraph}").
type EvidenceSpan struct {
	Scheme    string
	Page      int
	Paragraph int
}

// StudyCard is the typed extraction result; the core rejects any
// numeric field whose EvidenceSpans list is empty (§6, §7
// ExtractionFailure).
type StudyCard struct {
	TrialID       string
	Fields        map[string]interface{}
	EvidenceSpans map[string][]EvidenceSpan // keyed by Fields key
	SchemaValid   bool
}

// StudyCardExtractor turns fetched document text into a typed,
// evidence-backed study card (§6).
type StudyCardExtractor interface {
	Extract(ctx context.Context, metadata FetchedDocument, chunks []TextChunk, hint TrialHint) (StudyCard, error)
}

// NumericFieldsMissingEvidence reports every StudyCard field name that
// carries a numeric value but no evidence span, the core's schema gate
// (§6: "rejects extractions that ... carry any numeric value without an
// evidence span").
func NumericFieldsMissingEvidence(card StudyCard) []string {
	var missing []string
	for key, val := range card.Fields {
		if !isNumeric(val) {
			continue
		}
		if len(card.EvidenceSpans[key]) == 0 {
			missing = append(missing, key)
		}
	}
	return missing
}

func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}
