package version

import (
	"fmt"
	"sort"

	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// Classify is a pure function of (old_raw, new_raw) producing the list of
// field-wise changes with fixed significance classification (§4.3). It is
// symmetric in the sense required by §8: Classify(old, new) and
// Classify(new, old) differ only in ChangeType direction (ADDED<->REMOVED
// swap, MODIFIED old/new swap) and agree on Significance.
func Classify(oldRaw, newRaw trial.Raw) []trial.Change {
	var changes []trial.Change

	changes = append(changes, scalarChanges(oldRaw, newRaw)...)
	changes = append(changes, listChanges(oldRaw, newRaw, "armsInterventionsModule", "interventions", "name", trial.SignificanceMedium, "intervention")...)
	changes = append(changes, listChanges(oldRaw, newRaw, "conditionsModule", "conditions", "", trial.SignificanceMedium, "condition")...)
	changes = append(changes, listChanges(oldRaw, newRaw, "conditionsModule", "keywords", "", trial.SignificanceLow, "keyword")...)
	changes = append(changes, locationChanges(oldRaw, newRaw)...)

	return changes
}

type scalarRule struct {
	module, field string
	significance  trial.Significance
	description   string
}

var scalarRules = []scalarRule{
	{"outcomesModule", "__primary_endpoint__", trial.SignificanceHigh, "primary endpoint text"},
	{"designModule", "__sample_size__", trial.SignificanceHigh, "sample size"},
	{"designModule", "__analysis_plan__", trial.SignificanceHigh, "analysis plan text"},
	{"designModule", "__phase__", trial.SignificanceHigh, "phase"},
	{"statusModule", "overallStatus", trial.SignificanceHigh, "status"},
	{"designModule", "__allocation__", trial.SignificanceHigh, "allocation"},
	{"designModule", "__masking__", trial.SignificanceHigh, "masking"},
	{"statisticsModule", "alphaLevel", trial.SignificanceHigh, "alpha level"},
	{"statisticsModule", "statisticalPower", trial.SignificanceHigh, "statistical power"},
	{"sponsorCollaboratorsModule", "__lead_sponsor__", trial.SignificanceMedium, "lead sponsor name"},
	{"statusModule", "__start_date__", trial.SignificanceMedium, "study start date"},
	{"statusModule", "__primary_completion_date__", trial.SignificanceMedium, "primary completion date"},
	{"identificationModule", "briefTitle", trial.SignificanceLow, "brief title"},
	{"identificationModule", "officialTitle", trial.SignificanceLow, "official title"},
	{"identificationModule", "acronym", trial.SignificanceLow, "acronym"},
	{"eligibilityModule", "eligibilityCriteria", trial.SignificanceLow, "eligibility criteria text"},
}

func scalarChanges(oldRaw, newRaw trial.Raw) []trial.Change {
	var out []trial.Change
	for _, rule := range scalarRules {
		oldVal := resolveScalar(oldRaw, rule)
		newVal := resolveScalar(newRaw, rule)
		if oldVal == newVal {
			continue
		}
		out = append(out, buildChange(fieldPath(rule), oldVal, newVal, rule.significance, rule.description))
	}
	return out
}

// fieldPath returns the full dotted path for display/audit purposes.
// Tokenized fields (the "__xxx__" markers) map to the full
// protocolSection-relative path spelled out below; plain field names get
// the module prefixed.
func fieldPath(rule scalarRule) string {
	switch rule.field {
	case "__primary_endpoint__":
		return "outcomesModule.primaryOutcomes"
	case "__sample_size__":
		return "designModule.enrollmentInfo.count"
	case "__analysis_plan__":
		return "designModule.designInfo.analysisPlanDescription"
	case "__phase__":
		return "designModule.phases"
	case "__allocation__":
		return "designModule.designInfo.allocation"
	case "__masking__":
		return "designModule.designInfo.maskingInfo.masking"
	case "__lead_sponsor__":
		return "sponsorCollaboratorsModule.leadSponsor.name"
	case "__start_date__":
		return "statusModule.startDateStruct.date"
	case "__primary_completion_date__":
		return "statusModule.primaryCompletionDateStruct.date"
	default:
		return rule.module + "." + rule.field
	}
}

func resolveScalar(raw trial.Raw, rule scalarRule) string {
	protocol, ok := trial.GetMap(raw, "protocolSection")
	if !ok {
		return ""
	}
	module, ok := trial.GetMap(protocol, rule.module)
	if !ok {
		return ""
	}
	switch rule.field {
	case "__primary_endpoint__":
		return trial.ExtractPrimaryEndpointText(module)
	case "__sample_size__":
		if n := trial.ExtractSampleSize(module); n != nil {
			return fmt.Sprintf("%d", *n)
		}
		return ""
	case "__analysis_plan__":
		info, _ := trial.GetMap(module, "designInfo")
		s, _ := trial.GetString(info, "analysisPlanDescription")
		return s
	case "__phase__":
		return string(trial.ExtractPhaseOf(module))
	case "__allocation__":
		info, _ := trial.GetMap(module, "designInfo")
		s, _ := trial.GetString(info, "allocation")
		return s
	case "__masking__":
		info, _ := trial.GetMap(module, "designInfo")
		masking, _ := trial.GetMap(info, "maskingInfo")
		s, _ := trial.GetString(masking, "masking")
		return s
	case "__lead_sponsor__":
		lead, _ := trial.GetMap(module, "leadSponsor")
		s, _ := trial.GetString(lead, "name")
		return s
	case "__start_date__":
		sub, _ := trial.GetMap(module, "startDateStruct")
		s, _ := trial.GetString(sub, "date")
		return s
	case "__primary_completion_date__":
		sub, _ := trial.GetMap(module, "primaryCompletionDateStruct")
		s, _ := trial.GetString(sub, "date")
		return s
	default:
		s, _ := trial.GetString(module, rule.field)
		return s
	}
}

func buildChange(path string, oldVal, newVal interface{}, sig trial.Significance, desc string) trial.Change {
	ct := trial.ChangeModified
	_, oldOk := nonEmpty(oldVal)
	_, newOk := nonEmpty(newVal)
	switch {
	case !oldOk && newOk:
		ct = trial.ChangeAdded
	case oldOk && !newOk:
		ct = trial.ChangeRemoved
	}
	return trial.Change{
		FieldPath:    path,
		Old:          oldVal,
		New:          newVal,
		ChangeType:   ct,
		Significance: sig,
		Description:  fmt.Sprintf("%s changed", desc),
	}
}

func nonEmpty(v interface{}) (string, bool) {
	s, _ := v.(string)
	return s, s != ""
}

// listChanges diffs a named list field under a module, classifying
// additions/removals of the list as a whole with the given significance,
// per §4.3 ("locations add/remove (MEDIUM for add/remove of list as a
// whole)"). keyField selects the string sub-field used as each element's
// identity; empty keyField means elements are themselves strings.
func listChanges(oldRaw, newRaw trial.Raw, module, listField, keyField string, sig trial.Significance, label string) []trial.Change {
	oldSet := listKeys(oldRaw, module, listField, keyField)
	newSet := listKeys(newRaw, module, listField, keyField)

	var out []trial.Change
	for k := range newSet {
		if !oldSet[k] {
			out = append(out, trial.Change{
				FieldPath:    module + "." + listField,
				Old:          nil,
				New:          k,
				ChangeType:   trial.ChangeAdded,
				Significance: sig,
				Description:  fmt.Sprintf("%s added: %s", label, k),
			})
		}
	}
	for k := range oldSet {
		if !newSet[k] {
			out = append(out, trial.Change{
				FieldPath:    module + "." + listField,
				Old:          k,
				New:          nil,
				ChangeType:   trial.ChangeRemoved,
				Significance: sig,
				Description:  fmt.Sprintf("%s removed: %s", label, k),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out
}

func listKeys(raw trial.Raw, module, listField, keyField string) map[string]bool {
	set := map[string]bool{}
	protocol, ok := trial.GetMap(raw, "protocolSection")
	if !ok {
		return set
	}
	mod, ok := trial.GetMap(protocol, module)
	if !ok {
		return set
	}
	items, ok := mod[listField].([]interface{})
	if !ok {
		return set
	}
	for _, item := range items {
		if keyField == "" {
			if s, ok := item.(string); ok {
				set[s] = true
			}
			continue
		}
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := m[keyField].(string); ok {
			set[s] = true
		}
	}
	return set
}

// locationChanges implements the add/remove-as-a-whole MEDIUM rule plus
// the individual-facility-churn LOW rule from §4.3. Because both apply to
// the same list field, this is kept distinct from the generic
// listChanges helper: a list-level add/remove touching more than zero
// but not all locations registers both a MEDIUM whole-list change and
// LOW per-facility changes.
func locationChanges(oldRaw, newRaw trial.Raw) []trial.Change {
	oldSet := listKeys(oldRaw, "contactsLocationsModule", "locations", "facility")
	newSet := listKeys(newRaw, "contactsLocationsModule", "locations", "facility")
	if len(symDiff(oldSet, newSet)) == 0 {
		return nil
	}

	out := []trial.Change{{
		FieldPath:    "contactsLocationsModule.locations",
		ChangeType:   trial.ChangeModified,
		Significance: trial.SignificanceMedium,
		Description:  "locations list changed",
	}}
	for k := range newSet {
		if !oldSet[k] {
			out = append(out, trial.Change{
				FieldPath: "contactsLocationsModule.locations", New: k,
				ChangeType: trial.ChangeAdded, Significance: trial.SignificanceLow,
				Description: fmt.Sprintf("facility added: %s", k),
			})
		}
	}
	for k := range oldSet {
		if !newSet[k] {
			out = append(out, trial.Change{
				FieldPath: "contactsLocationsModule.locations", Old: k,
				ChangeType: trial.ChangeRemoved, Significance: trial.SignificanceLow,
				Description: fmt.Sprintf("facility removed: %s", k),
			})
		}
	}
	return out
}

func symDiff(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	for k := range b {
		if !a[k] {
			out[k] = true
		}
	}
	return out
}
