package signal

import (
	"fmt"
	"time"
)

// VersionSnapshot is the minimal per-version shape S1 needs: the
// chronological sequence of {captured time, primary endpoint text,
// estimated primary completion date at that version} (§4.6 S1). It lives
// in this package rather than importing internal/trial directly so the
// primitive stays a pure function of caller-supplied, already-unpacked
// inputs — the orchestrator is responsible for projecting trial.Version
// into this shape.
type VersionSnapshot struct {
	CapturedAt          time.Time
	PrimaryEndpointText string
	EPCD                *time.Time
}

// S1EndpointChanged implements §4.6 S1 over a chronologically ordered
// list of version snapshots.
func S1EndpointChanged(versions []VersionSnapshot) Result {
	if len(versions) < 2 {
		return notFired(S1, "fewer than two versions")
	}
	for i := 1; i < len(versions); i++ {
		prev, cur := versions[i-1], versions[i]
		prevConcept := ClassifyEndpoint(prev.PrimaryEndpointText)
		curConcept := ClassifyEndpoint(cur.PrimaryEndpointText)
		if !prevConcept.differs(curConcept) {
			continue
		}
		late := false
		if cur.EPCD != nil {
			days := cur.EPCD.Sub(cur.CapturedAt).Hours() / 24
			late = days >= -180 && days <= 180
		}
		if late {
			return Result{
				ID: S1, Fired: true, Severity: SeverityHigh,
				Reason: fmt.Sprintf("primary endpoint changed from %q to %q within 180 days of EPCD", prev.PrimaryEndpointText, cur.PrimaryEndpointText),
				Metadata: map[string]interface{}{"from": prevConcept, "to": curConcept},
			}
		}
	}
	return notFired(S1, "no material-and-late endpoint change found")
}

// DefaultOncologyORRMCID is the fallback minimum clinically important
// difference S2 uses when Δ_abs is not supplied for an oncology ORR
// endpoint (§4.6 S2).
const DefaultOncologyORRMCID = 0.12

// S2Input is the union of the two branches S2 evaluates (§4.6 S2).
// Exactly one of Proportions or TimeToEvent should be set.
type S2Input struct {
	Pivotal      bool
	Proportions  *S2Proportions
	TimeToEvent  *S2TimeToEvent
}

type S2Proportions struct {
	NT, NC       float64
	PC           float64
	DeltaAbs     *float64 // nil triggers the MCID default + low-cert flag
	Alpha        float64
	TwoSided     bool
}

type S2TimeToEvent struct {
	Events          *float64 // nil triggers the 60%-of-NTotal default + low-cert flag
	NTotal          float64
	AllocationRatio float64
	LnHRAlt         float64
	Alpha           float64
	TwoSided        bool
}

// S2UnderpoweredPivotal implements §4.6 S2.
func S2UnderpoweredPivotal(in S2Input) Result {
	if !in.Pivotal {
		return notFired(S2, "not a pivotal trial")
	}

	var power float64
	var lowCert bool

	switch {
	case in.Proportions != nil:
		p := in.Proportions
		deltaAbs := p.DeltaAbs
		var delta float64
		if deltaAbs == nil {
			delta = DefaultOncologyORRMCID
			lowCert = true
		} else {
			delta = *deltaAbs
		}
		zAlpha := ZAlpha(p.Alpha, p.TwoSided)
		power = TwoProportionPower(p.NT, p.NC, p.PC, delta, zAlpha)

	case in.TimeToEvent != nil:
		tte := in.TimeToEvent
		var events float64
		if tte.Events == nil {
			events = 0.60 * tte.NTotal
			lowCert = true
		} else {
			events = *tte.Events
		}
		zAlpha := ZAlpha(tte.Alpha, tte.TwoSided)
		power = FreedmanPower(events, tte.AllocationRatio, tte.LnHRAlt, zAlpha)

	default:
		return notFired(S2, "no proportions or time-to-event input supplied")
	}

	highThreshold := 0.55
	mediumThreshold := 0.70
	if lowCert {
		mediumThreshold = 0.55
	}

	v := power
	switch {
	case power < highThreshold:
		return Result{ID: S2, Fired: true, Severity: SeverityHigh, Value: &v, LowCertInputs: lowCert,
			Reason: fmt.Sprintf("computed power %.3f below high threshold %.2f", power, highThreshold)}
	case power < mediumThreshold:
		return Result{ID: S2, Fired: true, Severity: SeverityMedium, Value: &v, LowCertInputs: lowCert,
			Reason: fmt.Sprintf("computed power %.3f below medium threshold %.2f", power, mediumThreshold)}
	default:
		return Result{ID: S2, Fired: false, Value: &v, LowCertInputs: lowCert,
			Reason: fmt.Sprintf("computed power %.3f adequate", power)}
	}
}

// S3Input is what S3 needs from the study card (§4.6 S3).
type S3Input struct {
	ITTPValue                 float64
	SubgroupPValues           []float64
	MultiplicityAdjusted      bool
	PreSpecifiedInteraction   bool
	NarrativePromotesSubgroup bool
}

// S3SubgroupOnlyWin implements §4.6 S3.
func S3SubgroupOnlyWin(in S3Input) Result {
	if in.ITTPValue < 0.05 {
		return notFired(S3, "overall ITT result was significant")
	}
	if in.MultiplicityAdjusted || in.PreSpecifiedInteraction {
		return notFired(S3, "subgroup win was adjusted or pre-specified")
	}
	hasSubgroupWin := false
	for _, p := range in.SubgroupPValues {
		if p < 0.05 {
			hasSubgroupWin = true
			break
		}
	}
	if !hasSubgroupWin {
		return notFired(S3, "no subgroup crossed p<0.05")
	}
	sev := SeverityMedium
	if in.NarrativePromotesSubgroup {
		sev = SeverityHigh
	}
	return Result{ID: S3, Fired: true, Severity: sev, Reason: "overall ITT non-significant but an unadjusted, non-pre-specified subgroup won"}
}

// S4Input is what S4 needs from the study card (§4.6 S4).
type S4Input struct {
	ITTSignificant            bool
	ITTPositive               bool
	PPSignificant             bool
	PPPositive                bool
	DropoutT, DropoutC        float64
	PrimaryEndpointSubjective bool
	Unblinded                 bool
}

// S4ITTvsPPDivergence implements §4.6 S4.
func S4ITTvsPPDivergence(in S4Input) Result {
	ittFailedOrNegative := !in.ITTSignificant || !in.ITTPositive
	ppWon := in.PPSignificant && in.PPPositive
	asymmetry := in.DropoutT - in.DropoutC
	if asymmetry < 0 {
		asymmetry = -asymmetry
	}
	if !(ittFailedOrNegative && ppWon && asymmetry >= 0.10) {
		return notFired(S4, "ITT/PP divergence plus dropout asymmetry conditions not all met")
	}
	sev := SeverityMedium
	if asymmetry >= 0.15 || (in.PrimaryEndpointSubjective && in.Unblinded) {
		sev = SeverityHigh
	}
	v := asymmetry
	return Result{ID: S4, Fired: true, Severity: sev, Value: &v, Reason: "PP win with ITT failure/negative result and dropout asymmetry"}
}

// S5Input is what S5 needs (§4.6 S5).
type S5Input struct {
	GraveyardClass bool
	ClaimedEffect  float64
	P75Historical  float64
	P90Historical  float64
}

// S5ImplausibleEffectSize implements §4.6 S5.
func S5ImplausibleEffectSize(in S5Input) Result {
	if !in.GraveyardClass {
		return notFired(S5, "therapeutic class is not a graveyard class")
	}
	if in.ClaimedEffect <= in.P75Historical {
		return notFired(S5, "claimed effect within historical range")
	}
	sev := SeverityMedium
	if in.ClaimedEffect > in.P90Historical {
		sev = SeverityHigh
	}
	v := in.ClaimedEffect
	return Result{ID: S5, Fired: true, Severity: sev, Value: &v, Reason: "claimed effect exceeds historical winner distribution for a graveyard class"}
}

// S6Input is what S6 needs (§4.6 S6).
type S6Input struct {
	PlannedInterims   int
	AlphaSpendingPlan bool
	ActualPeeks       int
	AlphaReallocated  bool
}

// S6MultipleLooks implements §4.6 S6.
func S6MultipleLooks(in S6Input) Result {
	if in.PlannedInterims >= 2 && !in.AlphaSpendingPlan {
		return Result{ID: S6, Fired: true, Severity: SeverityHigh, Reason: "2+ planned interim looks with no alpha-spending plan"}
	}
	if in.ActualPeeks > in.PlannedInterims && !in.AlphaReallocated {
		return Result{ID: S6, Fired: true, Severity: SeverityMedium, Reason: "actual peeks exceeded planned interims without alpha reallocation"}
	}
	return notFired(S6, "interim-look policy adequately controlled")
}

// S7Input is what S7 needs (§4.6 S7).
type S7Input struct {
	Pivotal             bool
	SingleArm           bool
	RCTStandardRequired bool
}

// S7SingleArmPivotal implements §4.6 S7.
func S7SingleArmPivotal(in S7Input) Result {
	if in.Pivotal && in.SingleArm && in.RCTStandardRequired {
		return Result{ID: S7, Fired: true, Severity: SeverityHigh, Reason: "pivotal single-arm trial in a setting where RCT is standard"}
	}
	return notFired(S7, "not a single-arm pivotal in an RCT-standard setting")
}

// S8Input is what S8 needs, including the sponsor-program-wide p-value
// pool for the heaping test (§4.6 S8).
type S8Input struct {
	PrimaryP       *float64
	ProgramPValues []float64 // all primary p-values for the sponsor's program
}

// S8PValueHeaping implements §4.6 S8: program-level heaping takes
// priority over (and can escalate past) the single-trial cusp check.
func S8PValueHeaping(in S8Input) Result {
	var left, right int
	for _, p := range in.ProgramPValues {
		switch {
		case p >= 0.045 && p < 0.050:
			left++
		case p >= 0.050 && p <= 0.055:
			right++
		}
	}
	total := left + right
	if total >= 10 && left >= 2*right {
		tail := BinomialUpperTail(left, total, 0.5)
		if tail < 0.01 {
			v := tail
			return Result{ID: S8, Fired: true, Severity: SeverityHigh, Value: &v,
				Reason: fmt.Sprintf("program-level p-value heaping: %d left vs %d right, binomial tail %.4f", left, right, tail)}
		}
	}

	if in.PrimaryP != nil && *in.PrimaryP >= 0.045 && *in.PrimaryP <= 0.050 {
		v := *in.PrimaryP
		return Result{ID: S8, Fired: true, Severity: SeverityMedium, Value: &v, Reason: "primary p-value sits on the significance cusp"}
	}
	return notFired(S8, "no cusp or program-level heaping detected")
}

// S9Input is what S9 needs (§4.6 S9).
type S9Input struct {
	PFSBenefit       bool // p<0.05 OR (HR<1 AND 95% CI upper<1)
	OSHR             float64
	OSEventsFraction float64
	OSP              float64
	CrossoverRate    float64
}

// S9OSPFSContradiction implements §4.6 S9.
func S9OSPFSContradiction(in S9Input) Result {
	if !(in.PFSBenefit && in.OSHR >= 1.10 && in.OSEventsFraction >= 0.60 && in.OSP < 0.20 && in.CrossoverRate <= 0.30) {
		return notFired(S9, "OS/PFS contradiction conditions not all met")
	}
	sev := SeverityMedium
	if in.OSHR >= 1.20 {
		sev = SeverityHigh
	}
	v := in.OSHR
	return Result{ID: S9, Fired: true, Severity: sev, Value: &v, Reason: "PFS benefit contradicted by OS harm signal"}
}
