// Package document implements the Document Core: dedup by content hash,
// the HP-1..HP-4 linking heuristics, and the auto-promotion gate (§4.5).
package document

import "time"

// Status is the document staging lifecycle (§3, SPEC_FULL supplemented
// feature: the full discovered->...->ready chain carried as an explicit
// enum rather than left implicit).
type Status string

const (
	StatusDiscovered Status = "discovered"
	StatusFetched    Status = "fetched"
	StatusParsed     Status = "parsed"
	StatusIndexed    Status = "indexed"
	StatusLinked     Status = "linked"
	StatusReady      Status = "ready"
	StatusBuilt      Status = "built"
	StatusError      Status = "error"
)

// Document is a fetched artifact, unique on SourceURL (§3).
type Document struct {
	ID          int64
	SourceURL   string
	ContentHash string // sha256 of raw bytes, used for dedup
	Publisher   string
	PublishedAt *time.Time
	StorageURI  string
	ContentType string
	Status      Status
	ErrorMsg    string
	LastSeenAt  time.Time
}

// Advance transitions the document to the next lifecycle stage. It does
// not validate that the transition is legal — callers invoke it only
// from the pipeline stage that earns it — but it always clears ErrorMsg,
// since reaching any forward stage implies the prior error (if any) no
// longer applies.
func (d *Document) Advance(to Status) {
	d.Status = to
	d.ErrorMsg = ""
}

// Fail marks the document status=error with the given message (§7
// ExtractionFailure: "the orchestrator marks the document status=error
// with error_msg set").
func (d *Document) Fail(msg string) {
	d.Status = StatusError
	d.ErrorMsg = msg
}

// EntityKind names what a DocumentEntity span was detected as.
type EntityKind string

const (
	EntityNCTAccession EntityKind = "nct_accession"
	EntityAssetAlias   EntityKind = "asset_alias"
	EntityInterventionName EntityKind = "intervention_name"
	EntityAssetCode    EntityKind = "asset_code"
	EntityINN          EntityKind = "inn"
)

// DocumentEntity is a typed span within a document (§3).
type DocumentEntity struct {
	ID              int64
	DocumentID      int64
	Page            int
	CharStart       int
	CharEnd         int
	Detector        string
	Kind            EntityKind
	NormalizedValue string
	Confidence      float64
}

// LinkType names which heuristic produced a DocumentLink (§4.5).
type LinkType string

const (
	LinkHP1NCTNearAsset          LinkType = "hp1_nct_near_asset"
	LinkHP2ExactIntervention     LinkType = "hp2_exact_intervention"
	LinkHP3CompanyPRCodeAndINN   LinkType = "hp3_company_pr_code_inn"
	LinkHP4AbstractSpecificity   LinkType = "hp4_abstract_specificity"
)

// DocumentLink is a candidate (doc, asset, optional trial) cross-reference
// with initial confidence (§3, §4.5).
type DocumentLink struct {
	ID          int64
	DocumentID  int64
	AssetID     int64
	NCTID       string // optional; empty means not trial-scoped
	LinkType    LinkType
	Confidence  float64
	Evidence    []DocumentEntity
	Promoted    bool
}
