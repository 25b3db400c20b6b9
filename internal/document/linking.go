package document

import (
	"context"
	"regexp"
	"strings"
)

// nctAccessionRe matches an NCT-style registry accession (§4.5 HP-1).
var nctAccessionRe = regexp.MustCompile(`NCT0*[1-9][0-9]{4,}`)

// comboWordsRe matches combination-therapy wording that suppresses the
// multi-asset-on-one-document confidence downgrade (§4.5 conflict/combo
// policy).
var comboWordsRe = regexp.MustCompile(`(?i)\b(combination|combo|plus|arm|cohort)\b|\+`)

// AssetAliasIndex resolves known asset aliases against free text, the
// shared lookup surface HP-1, HP-3, and HP-4 all need.
type AssetAliasIndex interface {
	// FindAliasesIn returns every known alias occurrence in text, each
	// with its asset id and the [start,end) byte offsets it was found at.
	FindAliasesIn(text string) []AliasHit

	// AssetCodeAndINNSameAsset reports whether code and inn both resolve
	// to the same asset id (§4.5 HP-3).
	AssetCodeAndINNSameAsset(code, inn string) (assetID int64, ok bool)

	// UnambiguousAssetCode reports whether code resolves to exactly one
	// asset (§4.5 HP-4: "unambiguous asset code").
	UnambiguousAssetCode(code string) (assetID int64, ok bool)
}

// AliasHit is one alias occurrence located in a page of text.
type AliasHit struct {
	AssetID int64
	Alias   string
	Start   int
	End     int
}

// RegistryInterventionCache is the optional collaborator HP-2 depends on
// (§4.5: "Requires an external registry-cache collaborator; disabled when
// unavailable"). Per §9's open question, no concrete implementation is
// wired yet — HP-2 is a no-op whenever this is nil.
type RegistryInterventionCache interface {
	InterventionNames(nctID string) ([]string, error)
}

// DomainLists holds the configured wire-service domains HP-3 excludes.
// There is no list of known company domains.
type DomainLists struct {
	WireServiceDomains map[string]bool
}

// PhaseKeywords and IndicationKeywords are the configured lists HP-4's
// body-text check scans for (§4.5).
type KeywordLists struct {
	PhaseKeywords      []string
	IndicationKeywords []string
}

// Page is the minimal per-page text unit the heuristics scan. Pages come
// from the study-card extractor's text chunks; this package does not
// fetch or parse documents itself (§1 Non-goals).
type Page struct {
	Number int
	Text   string
}

// EvaluateHP1 finds NCT-accession-near-asset-alias co-occurrences within
// 250 characters on the same page, each at confidence 1.00 (§4.5 HP-1).
func EvaluateHP1(doc Document, pages []Page, assets AssetAliasIndex) []DocumentLink {
	var out []DocumentLink
	for _, p := range pages {
		nctSpans := nctAccessionRe.FindAllStringIndex(p.Text, -1)
		if len(nctSpans) == 0 {
			continue
		}
		aliasHits := assets.FindAliasesIn(p.Text)
		for _, nctSpan := range nctSpans {
			nctID := p.Text[nctSpan[0]:nctSpan[1]]
			for _, hit := range aliasHits {
				if within250(nctSpan[0], nctSpan[1], hit.Start, hit.End) {
					out = append(out, DocumentLink{
						DocumentID: doc.ID,
						AssetID:    hit.AssetID,
						NCTID:      nctID,
						LinkType:   LinkHP1NCTNearAsset,
						Confidence: 1.00,
						Evidence: []DocumentEntity{
							{DocumentID: doc.ID, Page: p.Number, CharStart: nctSpan[0], CharEnd: nctSpan[1], Detector: "hp1", Kind: EntityNCTAccession, NormalizedValue: nctID},
							{DocumentID: doc.ID, Page: p.Number, CharStart: hit.Start, CharEnd: hit.End, Detector: "hp1", Kind: EntityAssetAlias, NormalizedValue: hit.Alias},
						},
					})
				}
			}
		}
	}
	return out
}

func within250(aStart, aEnd, bStart, bEnd int) bool {
	gap := bStart - aEnd
	if gap < 0 {
		gap = aStart - bEnd
	}
	return gap <= 250
}

// EvaluateHP2 links an asset alias to a trial when the alias exactly
// equals one of that trial's registered intervention names, at
// confidence 0.95 (§4.5 HP-2). It is a no-op when cache is nil.
func EvaluateHP2(ctx context.Context, doc Document, nctID string, assets AssetAliasIndex, cache RegistryInterventionCache) ([]DocumentLink, error) {
	if cache == nil {
		return nil, nil
	}
	names, err := cache.InterventionNames(nctID)
	if err != nil {
		return nil, err
	}
	var out []DocumentLink
	for _, name := range names {
		for _, hit := range assets.FindAliasesIn(name) {
			if !strings.EqualFold(hit.Alias, name) {
				continue
			}
			out = append(out, DocumentLink{
				DocumentID: doc.ID, AssetID: hit.AssetID, NCTID: nctID,
				LinkType: LinkHP2ExactIntervention, Confidence: 0.95,
			})
		}
	}
	return out, nil
}

// EvaluateHP3 links when doc is not hosted on a configured wire-service
// domain and contains both an asset code and an INN/generic resolving to
// the same asset, at confidence 0.90 (§4.5 HP-3). It does not check that
// hostDomain belongs to a known company; any other host qualifies.
func EvaluateHP3(doc Document, hostDomain string, pages []Page, assets AssetAliasIndex, domains DomainLists) []DocumentLink {
	if domains.WireServiceDomains[hostDomain] {
		return nil
	}
	var out []DocumentLink
	for _, p := range pages {
		hits := assets.FindAliasesIn(p.Text)
		for i := 0; i < len(hits); i++ {
			for j := 0; j < len(hits); j++ {
				if i == j {
					continue
				}
				assetID, ok := assets.AssetCodeAndINNSameAsset(hits[i].Alias, hits[j].Alias)
				if !ok {
					continue
				}
				out = append(out, DocumentLink{
					DocumentID: doc.ID, AssetID: assetID,
					LinkType: LinkHP3CompanyPRCodeAndINN, Confidence: 0.90,
					Evidence: []DocumentEntity{
						{DocumentID: doc.ID, Page: p.Number, CharStart: hits[i].Start, CharEnd: hits[i].End, Detector: "hp3", Kind: EntityAssetCode, NormalizedValue: hits[i].Alias},
						{DocumentID: doc.ID, Page: p.Number, CharStart: hits[j].Start, CharEnd: hits[j].End, Detector: "hp3", Kind: EntityINN, NormalizedValue: hits[j].Alias},
					},
				})
			}
		}
	}
	return out
}

// EvaluateHP4 links when an abstract's title contains an unambiguous
// asset code and its body contains a phase keyword and an indication
// keyword, at confidence 0.85 (§4.5 HP-4).
func EvaluateHP4(doc Document, title string, body Page, assets AssetAliasIndex, keywords KeywordLists) []DocumentLink {
	titleHits := assets.FindAliasesIn(title)
	var codeHit *AliasHit
	for i, h := range titleHits {
		if assetID, ok := assets.UnambiguousAssetCode(h.Alias); ok {
			titleHits[i].AssetID = assetID
			codeHit = &titleHits[i]
			break
		}
	}
	if codeHit == nil {
		return nil
	}
	if !containsAny(body.Text, keywords.PhaseKeywords) || !containsAny(body.Text, keywords.IndicationKeywords) {
		return nil
	}
	return []DocumentLink{{
		DocumentID: doc.ID, AssetID: codeHit.AssetID,
		LinkType: LinkHP4AbstractSpecificity, Confidence: 0.85,
		Evidence: []DocumentEntity{{DocumentID: doc.ID, Page: 0, CharStart: codeHit.Start, CharEnd: codeHit.End, Detector: "hp4", Kind: EntityAssetCode, NormalizedValue: codeHit.Alias}},
	}}
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// ApplyConflictPolicy implements §4.5's conflict/combo policy: when more
// than one distinct asset is linked on the same document and no
// combination wording is present, the single highest-confidence asset is
// the "leading" candidate and every link to a different asset is
// downgraded by 0.20. Combo wording suppresses the downgrade entirely.
func ApplyConflictPolicy(links []DocumentLink, fullText string) []DocumentLink {
	byAsset := map[int64]bool{}
	for _, l := range links {
		byAsset[l.AssetID] = true
	}
	if len(byAsset) <= 1 || comboWordsRe.MatchString(fullText) {
		return links
	}

	leadingAsset := links[0].AssetID
	best := links[0].Confidence
	for _, l := range links {
		if l.Confidence > best {
			best = l.Confidence
			leadingAsset = l.AssetID
		}
	}

	out := make([]DocumentLink, len(links))
	copy(out, links)
	for i := range out {
		if out[i].AssetID != leadingAsset {
			out[i].Confidence -= 0.20
			if out[i].Confidence < 0 {
				out[i].Confidence = 0
			}
		}
	}
	return out
}
