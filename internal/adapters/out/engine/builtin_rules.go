package engine

import (
	"regexp"
	"strings"
)

type matchKind int

const (
	matchKeywords matchKind = iota
	matchPattern
)

// builtinRule maps a description to a taxonomy code when no exact code was billed.
type builtinRule struct {
	kind      matchKind
	pattern   string
	code      string
	component string
	weight    float64

	keywords []string
	rx       *regexp.Regexp
}

func (r builtinRule) matches(description string) bool {
	switch r.kind {
	case matchPattern:
		return r.rx.MatchString(description)
	default:
		for _, kw := range r.keywords {
			if !strings.Contains(description, kw) && !strings.Contains(description, looseKeyword(kw)) {
				return false
			}
		}
		return true
	}
}

// looseKeyword lets "no.show" match "noshow" and "multi-specialty" match "multispecialty".
func looseKeyword(kw string) string {
	return strings.NewReplacer(".", "", "-", "").Replace(kw)
}

func keywords(pattern, code, component string, weight float64) builtinRule {
	parts := strings.Split(pattern, ",")
	kws := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			kws = append(kws, p)
		}
	}
	return builtinRule{kind: matchKeywords, pattern: pattern, code: code, component: component, weight: weight, keywords: kws}
}

func regex(pattern, code, component string, weight float64) builtinRule {
	return builtinRule{
		kind:      matchPattern,
		pattern:   pattern,
		code:      code,
		component: component,
		weight:    weight,
		rx:        regexp.MustCompile("(?i)" + pattern),
	}
}

// builtinRules are the fallback heuristics. Stored mapping rules always win over them.
var builtinRules = []builtinRule{
	keywords("ime,physician,exam", "IME.PHY_EXAM.PROF_FEE", "PROF_FEE", 0.75),
	keywords("independent medical examination", "IME.PHY_EXAM.PROF_FEE", "PROF_FEE", 0.80),
	keywords("ime,examination", "IME.PHY_EXAM.PROF_FEE", "PROF_FEE", 0.72),
	regex(`\bime\b.*\bexam`, "IME.PHY_EXAM.PROF_FEE", "PROF_FEE", 0.78),
	regex(`\bindependent medical\b`, "IME.PHY_EXAM.PROF_FEE", "PROF_FEE", 0.80),
	keywords("multi.specialty,panel,ime", "IME.MULTI_SPECIALTY.PROF_FEE", "PROF_FEE", 0.80),
	keywords("multi-specialty,ime", "IME.MULTI_SPECIALTY.PROF_FEE", "PROF_FEE", 0.80),
	keywords("records review,no exam", "IME.RECORDS_REVIEW.PROF_FEE", "PROF_FEE", 0.85),
	keywords("file review,no exam", "IME.RECORDS_REVIEW.PROF_FEE", "PROF_FEE", 0.82),
	regex(`records?\s+review.*no.?exam`, "IME.RECORDS_REVIEW.PROF_FEE", "PROF_FEE", 0.85),
	keywords("addendum,report", "IME.ADDENDUM.PROF_FEE", "PROF_FEE", 0.85),
	regex(`\baddendum\b`, "IME.ADDENDUM.PROF_FEE", "PROF_FEE", 0.82),
	keywords("peer review", "IME.PEER_REVIEW.PROF_FEE", "PROF_FEE", 0.88),
	regex(`\bpeer.?review\b`, "IME.PEER_REVIEW.PROF_FEE", "PROF_FEE", 0.88),
	keywords("cancellation,fee", "IME.CANCELLATION.CANCEL_FEE", "CANCEL_FEE", 0.90),
	regex(`\bcancel`, "IME.CANCELLATION.CANCEL_FEE", "CANCEL_FEE", 0.85),
	keywords("no.show,fee", "IME.NO_SHOW.NO_SHOW_FEE", "NO_SHOW_FEE", 0.92),
	regex(`no.?show`, "IME.NO_SHOW.NO_SHOW_FEE", "NO_SHOW_FEE", 0.90),
	keywords("scheduling,fee", "IME.ADMIN.SCHEDULING_FEE", "SCHEDULING_FEE", 0.80),
	keywords("admin,scheduling", "IME.ADMIN.SCHEDULING_FEE", "SCHEDULING_FEE", 0.78),

	keywords("property,inspection,engineer", "ENG.PROPERTY_INSPECT.PROF_FEE", "PROF_FEE", 0.82),
	keywords("cause,origin", "ENG.CAUSE_ORIGIN.PROF_FEE", "PROF_FEE", 0.90),
	regex(`cause\s+(&|and)\s+origin`, "ENG.CAUSE_ORIGIN.PROF_FEE", "PROF_FEE", 0.92),
	keywords("structural,assessment", "ENG.STRUCTURAL_ASSESS.PROF_FEE", "PROF_FEE", 0.88),
	keywords("expert,report,engineer", "ENG.EXPERT_REPORT.PROF_FEE", "PROF_FEE", 0.80),
	keywords("testimony,deposition", "ENG.TESTIMONY_DEPO.PROF_FEE", "PROF_FEE", 0.88),
	keywords("supplemental,inspection", "ENG.SUPPLEMENTAL_INSPECT.PROF_FEE", "PROF_FEE", 0.82),

	keywords("field,adjust", "IA.FIELD_ASSIGN.PROF_FEE", "PROF_FEE", 0.82),
	keywords("field adjusting,daily rate", "IA.FIELD_ASSIGN.PROF_FEE", "PROF_FEE", 0.88),
	keywords("desk,assignment,adjust", "IA.DESK_ASSIGN.PROF_FEE", "PROF_FEE", 0.82),
	keywords("desk assignment", "IA.DESK_ASSIGN.PROF_FEE", "PROF_FEE", 0.82),
	keywords("desk,adjust", "IA.DESK_ASSIGN.PROF_FEE", "PROF_FEE", 0.80),
	keywords("catastrophe,assignment", "IA.CAT_ASSIGN.PROF_FEE", "PROF_FEE", 0.88),
	regex(`\bcat\s+(assign|deployment|daily)\b`, "IA.CAT_ASSIGN.PROF_FEE", "PROF_FEE", 0.85),
	keywords("photo,documentation", "IA.PHOTO_DOC.PROF_FEE", "PROF_FEE", 0.88),
	keywords("supplement,handling", "IA.SUPPLEMENT_HANDLING.PROF_FEE", "PROF_FEE", 0.88),
	keywords("file,open,fee", "IA.ADMIN.FILE_OPEN_FEE", "FILE_OPEN_FEE", 0.90),

	keywords("surveillance", "INV.SURVEILLANCE.PROF_FEE", "PROF_FEE", 0.92),
	keywords("recorded,statement", "INV.STATEMENT.PROF_FEE", "PROF_FEE", 0.90),
	keywords("background,asset", "INV.BACKGROUND_ASSET.PROF_FEE", "PROF_FEE", 0.85),
	keywords("aoe,coe", "INV.AOE_COE.PROF_FEE", "PROF_FEE", 0.92),
	regex(`aoe\s*/?\s*coe`, "INV.AOE_COE.PROF_FEE", "PROF_FEE", 0.92),
	keywords("skip,trace", "INV.SKIP_TRACE.PROF_FEE", "PROF_FEE", 0.92),

	keywords("medical,records,retrieval", "REC.MED_RECORDS.RETRIEVAL_FEE", "RETRIEVAL_FEE", 0.88),
	keywords("medical records,request", "REC.MED_RECORDS.RETRIEVAL_FEE", "RETRIEVAL_FEE", 0.85),
	keywords("copy,per page,records", "REC.MED_RECORDS.COPY_REPRO", "COPY_REPRO", 0.82),
	keywords("rush,records", "REC.MED_RECORDS.RUSH_PREMIUM", "RUSH_PREMIUM", 0.85),
	keywords("certified,copy", "REC.MED_RECORDS.CERT_COPY_FEE", "CERT_COPY_FEE", 0.85),
	keywords("employment,records", "REC.EMPLOYMENT_RECORDS.RETRIEVAL_FEE", "RETRIEVAL_FEE", 0.88),
	keywords("court,records", "REC.LEGAL_RECORDS.RETRIEVAL_FEE", "RETRIEVAL_FEE", 0.85),
	keywords("police,report", "REC.LEGAL_RECORDS.RETRIEVAL_FEE", "RETRIEVAL_FEE", 0.82),

	// Travel heuristics stay below every domain rule.
	regex(`\bmileage\b`, "IME.PHY_EXAM.MILEAGE", "MILEAGE", 0.60),
	regex(`\bmiles?\b`, "IME.PHY_EXAM.MILEAGE", "MILEAGE", 0.55),
	keywords("airfare", "IME.PHY_EXAM.TRAVEL_TRANSPORT", "TRAVEL_TRANSPORT", 0.65),
	keywords("lodging", "IME.PHY_EXAM.TRAVEL_LODGING", "TRAVEL_LODGING", 0.60),
	keywords("hotel", "IME.PHY_EXAM.TRAVEL_LODGING", "TRAVEL_LODGING", 0.58),
	keywords("meals,per diem", "IME.PHY_EXAM.TRAVEL_MEALS", "TRAVEL_MEALS", 0.65),
	keywords("pass.through", "XDOMAIN.PASS_THROUGH.THIRD_PARTY_COST", "THIRD_PARTY_COST", 0.70),
}
