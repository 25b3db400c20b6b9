package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssetIndex struct {
	hits        map[string][]AliasHit
	codeInnPair map[[2]string]int64
	unambiguous map[string]int64
}

func (f *fakeAssetIndex) FindAliasesIn(text string) []AliasHit {
	return f.hits[text]
}

func (f *fakeAssetIndex) AssetCodeAndINNSameAsset(code, inn string) (int64, bool) {
	id, ok := f.codeInnPair[[2]string{code, inn}]
	return id, ok
}

func (f *fakeAssetIndex) UnambiguousAssetCode(code string) (int64, bool) {
	id, ok := f.unambiguous[code]
	return id, ok
}

func TestEvaluateHP1_WithinWindow(t *testing.T) {
	text := "Patients enrolled in NCT01234567 received ACME-101 as the study drug."
	idx := &fakeAssetIndex{hits: map[string][]AliasHit{
		text: {{AssetID: 9, Alias: "ACME-101", Start: 43, End: 51}},
	}}
	doc := Document{ID: 1}
	links := EvaluateHP1(doc, []Page{{Number: 1, Text: text}}, idx)
	require.Len(t, links, 1)
	assert.Equal(t, LinkHP1NCTNearAsset, links[0].LinkType)
	assert.Equal(t, 1.00, links[0].Confidence)
	assert.Equal(t, "NCT01234567", links[0].NCTID)
}

func TestEvaluateHP2_NilCacheIsNoOp(t *testing.T) {
	idx := &fakeAssetIndex{}
	links, err := EvaluateHP2(nil, Document{ID: 1}, "NCT1", idx, nil)
	require.NoError(t, err)
	assert.Nil(t, links)
}

func TestEvaluateHP3_WireServiceDomainExcluded(t *testing.T) {
	idx := &fakeAssetIndex{}
	domains := DomainLists{WireServiceDomains: map[string]bool{"businesswire.com": true}}
	links := EvaluateHP3(Document{ID: 1}, "businesswire.com", nil, idx, domains)
	assert.Nil(t, links)
}

func TestEvaluateHP3_CodeAndINNSameAsset(t *testing.T) {
	text := "ACME-101 (genericol) met its primary endpoint."
	idx := &fakeAssetIndex{
		hits: map[string][]AliasHit{
			text: {
				{AssetID: 9, Alias: "ACME-101", Start: 0, End: 8},
				{AssetID: 9, Alias: "genericol", Start: 10, End: 19},
			},
		},
		codeInnPair: map[[2]string]int64{{"ACME-101", "genericol"}: 9, {"genericol", "ACME-101"}: 9},
	}
	domains := DomainLists{WireServiceDomains: map[string]bool{}}
	links := EvaluateHP3(Document{ID: 1}, "acme.com", []Page{{Number: 1, Text: text}}, idx, domains)
	require.NotEmpty(t, links)
	for _, l := range links {
		assert.Equal(t, int64(9), l.AssetID)
		assert.Equal(t, 0.90, l.Confidence)
	}
}

func TestEvaluateHP4_TitleCodeAndBodyKeywords(t *testing.T) {
	title := "Phase 3 Results for ACME-101 in NSCLC"
	body := Page{Number: 1, Text: "This phase 3 trial enrolled patients with non-small cell lung cancer."}
	idx := &fakeAssetIndex{
		hits:        map[string][]AliasHit{title: {{AssetID: 9, Alias: "ACME-101", Start: 21, End: 29}}},
		unambiguous: map[string]int64{"ACME-101": 9},
	}
	keywords := KeywordLists{PhaseKeywords: []string{"phase 3"}, IndicationKeywords: []string{"lung cancer"}}
	links := EvaluateHP4(Document{ID: 1}, title, body, idx, keywords)
	require.Len(t, links, 1)
	assert.Equal(t, 0.85, links[0].Confidence)
}

func TestEvaluateHP4_MissingIndicationKeywordNoLink(t *testing.T) {
	title := "Phase 3 Results for ACME-101"
	body := Page{Number: 1, Text: "This phase 3 trial enrolled patients."}
	idx := &fakeAssetIndex{
		hits:        map[string][]AliasHit{title: {{AssetID: 9, Alias: "ACME-101", Start: 21, End: 29}}},
		unambiguous: map[string]int64{"ACME-101": 9},
	}
	keywords := KeywordLists{PhaseKeywords: []string{"phase 3"}, IndicationKeywords: []string{"lung cancer"}}
	links := EvaluateHP4(Document{ID: 1}, title, body, idx, keywords)
	assert.Empty(t, links)
}

func TestApplyConflictPolicy_DowngradesNonLeadingWithoutComboWords(t *testing.T) {
	links := []DocumentLink{
		{AssetID: 1, Confidence: 0.95},
		{AssetID: 2, Confidence: 0.90},
	}
	out := ApplyConflictPolicy(links, "Acme announced results today.")
	require.Len(t, out, 2)
	var leading, other DocumentLink
	for _, l := range out {
		if l.AssetID == 1 {
			leading = l
		} else {
			other = l
		}
	}
	assert.Equal(t, 0.95, leading.Confidence)
	assert.InDelta(t, 0.70, other.Confidence, 1e-9)
}

func TestApplyConflictPolicy_ComboWordingSuppressesDowngrade(t *testing.T) {
	links := []DocumentLink{
		{AssetID: 1, Confidence: 0.95},
		{AssetID: 2, Confidence: 0.90},
	}
	out := ApplyConflictPolicy(links, "Acme announced results for the combination regimen today.")
	for _, l := range out {
		assert.True(t, l.Confidence == 0.95 || l.Confidence == 0.90)
	}
}

func TestApplyConflictPolicy_SingleAssetUnaffected(t *testing.T) {
	links := []DocumentLink{{AssetID: 1, Confidence: 0.95}, {AssetID: 1, Confidence: 0.90}}
	out := ApplyConflictPolicy(links, "Acme announced results today.")
	assert.Equal(t, 0.95, out[0].Confidence)
	assert.Equal(t, 0.90, out[1].Confidence)
}
