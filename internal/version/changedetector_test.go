package version

import (
	"testing"

	"github.com/daniyal-rahman/ncfd/internal/trial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPrimaryOutcome(measure, timeFrame string) trial.Raw {
	return trial.Raw{
		"protocolSection": map[string]interface{}{
			"outcomesModule": map[string]interface{}{
				"primaryOutcomes": []interface{}{
					map[string]interface{}{"measure": measure, "timeFrame": timeFrame},
				},
			},
		},
	}
}

func TestClassify_EndpointChangeIsHigh(t *testing.T) {
	old := withPrimaryOutcome("PFS", "Week 24")
	new := withPrimaryOutcome("OS", "Week 52")

	changes := Classify(old, new)
	require.Len(t, changes, 1)
	assert.Equal(t, trial.SignificanceHigh, changes[0].Significance)
	assert.Equal(t, "outcomesModule.primaryOutcomes", changes[0].FieldPath)
}

func TestClassify_NoChangeNoOutput(t *testing.T) {
	raw := withPrimaryOutcome("PFS", "Week 24")
	assert.Empty(t, Classify(raw, raw))
}

func TestClassify_LeadSponsorIsMedium(t *testing.T) {
	old := sponsorRaw("Old Sponsor Inc")
	new := sponsorRaw("New Sponsor Inc")
	changes := Classify(old, new)
	require.Len(t, changes, 1)
	assert.Equal(t, trial.SignificanceMedium, changes[0].Significance)
}

func sponsorRaw(name string) trial.Raw {
	return trial.Raw{
		"protocolSection": map[string]interface{}{
			"sponsorCollaboratorsModule": map[string]interface{}{
				"leadSponsor": map[string]interface{}{"name": name},
			},
		},
	}
}

func TestClassify_TitleIsLow(t *testing.T) {
	old := trial.Raw{"protocolSection": map[string]interface{}{
		"identificationModule": map[string]interface{}{"briefTitle": "Old Title"},
	}}
	new := trial.Raw{"protocolSection": map[string]interface{}{
		"identificationModule": map[string]interface{}{"briefTitle": "New Title"},
	}}
	changes := Classify(old, new)
	require.Len(t, changes, 1)
	assert.Equal(t, trial.SignificanceLow, changes[0].Significance)
}

func TestClassify_LocationAddIsMediumPlusLow(t *testing.T) {
	old := locationsRaw("Hospital A")
	new := locationsRaw("Hospital A", "Hospital B")
	changes := Classify(old, new)

	var sawMedium, sawLowAdd bool
	for _, c := range changes {
		if c.Significance == trial.SignificanceMedium && c.FieldPath == "contactsLocationsModule.locations" {
			sawMedium = true
		}
		if c.Significance == trial.SignificanceLow && c.ChangeType == trial.ChangeAdded {
			sawLowAdd = true
		}
	}
	assert.True(t, sawMedium)
	assert.True(t, sawLowAdd)
}

func locationsRaw(facilities ...string) trial.Raw {
	items := make([]interface{}, len(facilities))
	for i, f := range facilities {
		items[i] = map[string]interface{}{"facility": f}
	}
	return trial.Raw{
		"protocolSection": map[string]interface{}{
			"contactsLocationsModule": map[string]interface{}{"locations": items},
		},
	}
}

// TestClassify_Symmetric checks §8's symmetry property: classifying
// (old,new) and (new,old) agree on significance and differ only in
// change-type direction.
func TestClassify_Symmetric(t *testing.T) {
	old := sponsorRaw("A Sponsor")
	new := sponsorRaw("B Sponsor")

	forward := Classify(old, new)
	backward := Classify(new, old)
	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, forward[0].Significance, backward[0].Significance)
	assert.Equal(t, forward[0].Old, backward[0].New)
	assert.Equal(t, forward[0].New, backward[0].Old)
}

func TestClassify_InterventionAddRemove(t *testing.T) {
	old := interventionsRaw("DrugA")
	new := interventionsRaw("DrugB")
	changes := Classify(old, new)
	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, trial.SignificanceMedium, c.Significance)
	}
}

func interventionsRaw(names ...string) trial.Raw {
	items := make([]interface{}, len(names))
	for i, n := range names {
		items[i] = map[string]interface{}{"name": n}
	}
	return trial.Raw{
		"protocolSection": map[string]interface{}{
			"armsInterventionsModule": map[string]interface{}{"interventions": items},
		},
	}
}
