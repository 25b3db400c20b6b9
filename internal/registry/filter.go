package registry

import (
	"strings"

	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// allowedInterventionTypes and allowedPhases mirror §4.1's client-side
// filter policy.
var (
	allowedInterventionTypes = map[string]bool{"DRUG": true, "BIOLOGICAL": true}
	allowedPhases            = map[string]bool{"PHASE2": true, "PHASE3": true, "PHASE2_PHASE3": true}
)

// PassesFilter applies the three client-side predicates (§4.1): the
// server-side since-date filter is the only predicate the registry
// itself applies, because its filter surface beyond date is unstable.
func PassesFilter(raw trial.Raw) bool {
	protocol, ok := trial.GetMap(raw, "protocolSection")
	if !ok {
		return false
	}

	if design, ok := trial.GetMap(protocol, "designModule"); ok {
		studyType, _ := trial.GetString(design, "studyType")
		if !strings.HasPrefix(strings.ToUpper(studyType), "INTERVENTIONAL") {
			return false
		}
		if !hasAllowedPhase(design) {
			return false
		}
	} else {
		return false
	}

	if !hasAllowedIntervention(protocol) {
		return false
	}

	return true
}

func hasAllowedPhase(design trial.Raw) bool {
	rawPhases, ok := design["phases"].([]interface{})
	if !ok {
		return false
	}
	for _, rp := range rawPhases {
		ps, ok := rp.(string)
		if !ok {
			continue
		}
		normalized := strings.ToUpper(strings.ReplaceAll(ps, " ", ""))
		if allowedPhases[normalized] {
			return true
		}
	}
	return false
}

func hasAllowedIntervention(protocol trial.Raw) bool {
	armsInterventions, ok := trial.GetMap(protocol, "armsInterventionsModule")
	if !ok {
		return false
	}
	interventions, ok := armsInterventions["interventions"].([]interface{})
	if !ok {
		return false
	}
	for _, iv := range interventions {
		m, ok := iv.(map[string]interface{})
		if !ok {
			continue
		}
		itype, _ := trial.GetString(trial.Raw(m), "type")
		if allowedInterventionTypes[strings.ToUpper(itype)] {
			return true
		}
	}
	return false
}
