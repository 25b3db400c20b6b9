package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord() Raw {
	return Raw{
		"protocolSection": map[string]interface{}{
			"identificationModule": map[string]interface{}{
				"briefTitle":    "A Study of Drug X",
				"officialTitle": "A Phase 3 Study of Drug X in Adults",
			},
			"sponsorCollaboratorsModule": map[string]interface{}{
				"leadSponsor": map[string]interface{}{"name": "Acme Therapeutics, Inc."},
			},
			"designModule": map[string]interface{}{
				"phases":         []interface{}{"PHASE3"},
				"enrollmentInfo": map[string]interface{}{"count": float64(440)},
				"designInfo":     map[string]interface{}{"analysisPlanDescription": "ITT with alpha spending"},
			},
			"statusModule": map[string]interface{}{
				"overallStatus":              "RECRUITING",
				"primaryCompletionDateStruct": map[string]interface{}{"date": "2025-07"},
			},
			"outcomesModule": map[string]interface{}{
				"primaryOutcomes": []interface{}{
					map[string]interface{}{"measure": "Overall Survival", "timeFrame": "Week 52"},
				},
			},
		},
	}
}

func TestNormalize_Full(t *testing.T) {
	tr, sc, warnings := Normalize("NCT00000001", fullRecord())
	require.Empty(t, warnings)
	assert.Equal(t, "Acme Therapeutics, Inc.", tr.SponsorText)
	assert.Equal(t, Phase3, tr.Phase)
	assert.Equal(t, StatusRecruiting, tr.Status)
	assert.Equal(t, "Overall Survival (Week 52)", sc.PrimaryEndpointText)
	require.NotNil(t, sc.SampleSize)
	assert.Equal(t, 440, *sc.SampleSize)
	require.NotNil(t, sc.EstimatedPrimaryCompletionDate)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), *sc.EstimatedPrimaryCompletionDate)
}

func TestNormalize_MissingSubmodule(t *testing.T) {
	raw := Raw{"protocolSection": map[string]interface{}{}}
	tr, sc, warnings := Normalize("NCT00000002", raw)
	assert.Equal(t, "NCT00000002", tr.ID)
	assert.Empty(t, tr.SponsorText)
	assert.Zero(t, sc)
	assert.NotEmpty(t, warnings)
}

func TestNormalize_NoProtocolSection(t *testing.T) {
	tr, sc, warnings := Normalize("NCT00000003", Raw{})
	assert.Equal(t, "NCT00000003", tr.ID)
	assert.Zero(t, sc)
	assert.Contains(t, warnings, "missing protocolSection")
}

func TestExtractPrimaryEndpointText_NoTimeFrame(t *testing.T) {
	outcomes := Raw{"primaryOutcomes": []interface{}{
		map[string]interface{}{"measure": "ORR"},
	}}
	assert.Equal(t, "ORR", extractPrimaryEndpointText(outcomes))
}

func TestParseRegistryDate(t *testing.T) {
	d := ParseRegistryDate("2025-07-01")
	require.NotNil(t, d)
	assert.Equal(t, 2025, d.Year())

	d2 := ParseRegistryDate("2025-07")
	require.NotNil(t, d2)
	assert.Equal(t, 1, d2.Day())

	assert.Nil(t, ParseRegistryDate("July 2025"))
	assert.Nil(t, ParseRegistryDate(""))
}

func TestExtractPhase_CaseInsensitive(t *testing.T) {
	design := Raw{"phases": []interface{}{"Phase 2", "Phase 3"}}
	assert.Equal(t, Phase2, extractPhase(design))
}

func TestExtractPhase_None(t *testing.T) {
	design := Raw{"phases": []interface{}{"EARLY_PHASE1"}}
	assert.Equal(t, PhaseUnknown, extractPhase(design))
}
