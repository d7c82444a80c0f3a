package taxonomy

import "github.com/mzemanski-eng/claims-ebilling/internal/core/ports"

// Seed is the billing taxonomy. Codes read DOMAIN.SERVICE_ITEM.BILLING_COMPONENT.
var Seed = []ports.TaxonomyEntry{
	// Independent medical examination
	{Code: "IME.PHY_EXAM.PROF_FEE", Domain: "IME", ServiceItem: "PHY_EXAM", BillingComponent: "PROF_FEE", Label: "IME Physician Examination: Professional Fee"},
	{Code: "IME.PHY_EXAM.TRAVEL_TRANSPORT", Domain: "IME", ServiceItem: "PHY_EXAM", BillingComponent: "TRAVEL_TRANSPORT", Label: "IME Physician Examination: Transportation"},
	{Code: "IME.PHY_EXAM.TRAVEL_LODGING", Domain: "IME", ServiceItem: "PHY_EXAM", BillingComponent: "TRAVEL_LODGING", Label: "IME Physician Examination: Lodging"},
	{Code: "IME.PHY_EXAM.TRAVEL_MEALS", Domain: "IME", ServiceItem: "PHY_EXAM", BillingComponent: "TRAVEL_MEALS", Label: "IME Physician Examination: Meals & Per Diem"},
	{Code: "IME.PHY_EXAM.MILEAGE", Domain: "IME", ServiceItem: "PHY_EXAM", BillingComponent: "MILEAGE", Label: "IME Physician Examination: Mileage"},
	{Code: "IME.MULTI_SPECIALTY.PROF_FEE", Domain: "IME", ServiceItem: "MULTI_SPECIALTY", BillingComponent: "PROF_FEE", Label: "IME Multi-Specialty Panel: Professional Fee"},
	{Code: "IME.RECORDS_REVIEW.PROF_FEE", Domain: "IME", ServiceItem: "RECORDS_REVIEW", BillingComponent: "PROF_FEE", Label: "IME Records Review (No Exam): Professional Fee"},
	{Code: "IME.ADDENDUM.PROF_FEE", Domain: "IME", ServiceItem: "ADDENDUM", BillingComponent: "PROF_FEE", Label: "IME Addendum Report: Professional Fee"},
	{Code: "IME.PEER_REVIEW.PROF_FEE", Domain: "IME", ServiceItem: "PEER_REVIEW", BillingComponent: "PROF_FEE", Label: "IME Peer Review: Professional Fee"},
	{Code: "IME.CANCELLATION.CANCEL_FEE", Domain: "IME", ServiceItem: "CANCELLATION", BillingComponent: "CANCEL_FEE", Label: "IME Cancellation Fee"},
	{Code: "IME.NO_SHOW.NO_SHOW_FEE", Domain: "IME", ServiceItem: "NO_SHOW", BillingComponent: "NO_SHOW_FEE", Label: "IME No-Show Fee"},
	{Code: "IME.ADMIN.SCHEDULING_FEE", Domain: "IME", ServiceItem: "ADMIN", BillingComponent: "SCHEDULING_FEE", Label: "IME Administrative / Scheduling Fee"},

	// Engineering and forensic services
	{Code: "ENG.PROPERTY_INSPECT.PROF_FEE", Domain: "ENG", ServiceItem: "PROPERTY_INSPECT", BillingComponent: "PROF_FEE", Label: "Engineering Property Inspection: Professional Fee"},
	{Code: "ENG.PROPERTY_INSPECT.TRAVEL_TRANSPORT", Domain: "ENG", ServiceItem: "PROPERTY_INSPECT", BillingComponent: "TRAVEL_TRANSPORT", Label: "Engineering Property Inspection: Transportation"},
	{Code: "ENG.PROPERTY_INSPECT.MILEAGE", Domain: "ENG", ServiceItem: "PROPERTY_INSPECT", BillingComponent: "MILEAGE", Label: "Engineering Property Inspection: Mileage"},
	{Code: "ENG.CAUSE_ORIGIN.PROF_FEE", Domain: "ENG", ServiceItem: "CAUSE_ORIGIN", BillingComponent: "PROF_FEE", Label: "Engineering Cause & Origin Investigation: Professional Fee"},
	{Code: "ENG.STRUCTURAL_ASSESS.PROF_FEE", Domain: "ENG", ServiceItem: "STRUCTURAL_ASSESS", BillingComponent: "PROF_FEE", Label: "Engineering Structural Assessment: Professional Fee"},
	{Code: "ENG.EXPERT_REPORT.PROF_FEE", Domain: "ENG", ServiceItem: "EXPERT_REPORT", BillingComponent: "PROF_FEE", Label: "Engineering Expert Report: Professional Fee"},
	{Code: "ENG.FILE_REVIEW.PROF_FEE", Domain: "ENG", ServiceItem: "FILE_REVIEW", BillingComponent: "PROF_FEE", Label: "Engineering File Review: Professional Fee"},
	{Code: "ENG.SUPPLEMENTAL_INSPECT.PROF_FEE", Domain: "ENG", ServiceItem: "SUPPLEMENTAL_INSPECT", BillingComponent: "PROF_FEE", Label: "Engineering Supplemental Inspection: Professional Fee"},
	{Code: "ENG.TESTIMONY_DEPO.PROF_FEE", Domain: "ENG", ServiceItem: "TESTIMONY_DEPO", BillingComponent: "PROF_FEE", Label: "Engineering Expert Testimony / Deposition: Professional Fee"},

	// Independent adjusting
	{Code: "IA.FIELD_ASSIGN.PROF_FEE", Domain: "IA", ServiceItem: "FIELD_ASSIGN", BillingComponent: "PROF_FEE", Label: "Independent Adjusting Field Assignment: Professional Fee"},
	{Code: "IA.FIELD_ASSIGN.TRAVEL_TRANSPORT", Domain: "IA", ServiceItem: "FIELD_ASSIGN", BillingComponent: "TRAVEL_TRANSPORT", Label: "Independent Adjusting Field Assignment: Transportation"},
	{Code: "IA.FIELD_ASSIGN.MILEAGE", Domain: "IA", ServiceItem: "FIELD_ASSIGN", BillingComponent: "MILEAGE", Label: "Independent Adjusting Field Assignment: Mileage"},
	{Code: "IA.FIELD_ASSIGN.TRAVEL_LODGING", Domain: "IA", ServiceItem: "FIELD_ASSIGN", BillingComponent: "TRAVEL_LODGING", Label: "Independent Adjusting Field Assignment: Lodging"},
	{Code: "IA.FIELD_ASSIGN.TRAVEL_MEALS", Domain: "IA", ServiceItem: "FIELD_ASSIGN", BillingComponent: "TRAVEL_MEALS", Label: "Independent Adjusting Field Assignment: Meals & Per Diem"},
	{Code: "IA.DESK_ASSIGN.PROF_FEE", Domain: "IA", ServiceItem: "DESK_ASSIGN", BillingComponent: "PROF_FEE", Label: "Independent Adjusting Desk Assignment: Professional Fee"},
	{Code: "IA.CAT_ASSIGN.PROF_FEE", Domain: "IA", ServiceItem: "CAT_ASSIGN", BillingComponent: "PROF_FEE", Label: "Independent Adjusting Catastrophe Assignment: Professional Fee"},
	{Code: "IA.PHOTO_DOC.PROF_FEE", Domain: "IA", ServiceItem: "PHOTO_DOC", BillingComponent: "PROF_FEE", Label: "Independent Adjusting Photo & Documentation Services: Professional Fee"},
	{Code: "IA.SUPPLEMENT_HANDLING.PROF_FEE", Domain: "IA", ServiceItem: "SUPPLEMENT_HANDLING", BillingComponent: "PROF_FEE", Label: "Independent Adjusting Supplement Handling: Professional Fee"},
	{Code: "IA.ADMIN.FILE_OPEN_FEE", Domain: "IA", ServiceItem: "ADMIN", BillingComponent: "FILE_OPEN_FEE", Label: "Independent Adjusting Administrative / File Open Fee"},

	// Investigation and surveillance
	{Code: "INV.SURVEILLANCE.PROF_FEE", Domain: "INV", ServiceItem: "SURVEILLANCE", BillingComponent: "PROF_FEE", Label: "Investigation Surveillance: Professional Fee"},
	{Code: "INV.SURVEILLANCE.TRAVEL_TRANSPORT", Domain: "INV", ServiceItem: "SURVEILLANCE", BillingComponent: "TRAVEL_TRANSPORT", Label: "Investigation Surveillance: Transportation"},
	{Code: "INV.SURVEILLANCE.MILEAGE", Domain: "INV", ServiceItem: "SURVEILLANCE", BillingComponent: "MILEAGE", Label: "Investigation Surveillance: Mileage"},
	{Code: "INV.STATEMENT.PROF_FEE", Domain: "INV", ServiceItem: "STATEMENT", BillingComponent: "PROF_FEE", Label: "Investigation Recorded Statement: Professional Fee"},
	{Code: "INV.BACKGROUND_ASSET.PROF_FEE", Domain: "INV", ServiceItem: "BACKGROUND_ASSET", BillingComponent: "PROF_FEE", Label: "Investigation Background / Asset Search: Professional Fee"},
	{Code: "INV.AOE_COE.PROF_FEE", Domain: "INV", ServiceItem: "AOE_COE", BillingComponent: "PROF_FEE", Label: "Investigation AOE/COE Investigation: Professional Fee"},
	{Code: "INV.SKIP_TRACE.PROF_FEE", Domain: "INV", ServiceItem: "SKIP_TRACE", BillingComponent: "PROF_FEE", Label: "Investigation Skip Trace: Professional Fee"},

	// Record retrieval
	{Code: "REC.MED_RECORDS.RETRIEVAL_FEE", Domain: "REC", ServiceItem: "MED_RECORDS", BillingComponent: "RETRIEVAL_FEE", Label: "Record Retrieval Medical Records: Retrieval Fee"},
	{Code: "REC.MED_RECORDS.COPY_REPRO", Domain: "REC", ServiceItem: "MED_RECORDS", BillingComponent: "COPY_REPRO", Label: "Record Retrieval Medical Records: Copy / Reproduction Fee"},
	{Code: "REC.MED_RECORDS.POSTAGE_COURIER", Domain: "REC", ServiceItem: "MED_RECORDS", BillingComponent: "POSTAGE_COURIER", Label: "Record Retrieval Medical Records: Postage / Courier"},
	{Code: "REC.MED_RECORDS.RUSH_PREMIUM", Domain: "REC", ServiceItem: "MED_RECORDS", BillingComponent: "RUSH_PREMIUM", Label: "Record Retrieval Medical Records: Rush / Expedite Premium"},
	{Code: "REC.MED_RECORDS.CERT_COPY_FEE", Domain: "REC", ServiceItem: "MED_RECORDS", BillingComponent: "CERT_COPY_FEE", Label: "Record Retrieval Medical Records: Certified Copy Fee"},
	{Code: "REC.EMPLOYMENT_RECORDS.RETRIEVAL_FEE", Domain: "REC", ServiceItem: "EMPLOYMENT_RECORDS", BillingComponent: "RETRIEVAL_FEE", Label: "Record Retrieval Employment Records: Retrieval Fee"},
	{Code: "REC.LEGAL_RECORDS.RETRIEVAL_FEE", Domain: "REC", ServiceItem: "LEGAL_RECORDS", BillingComponent: "RETRIEVAL_FEE", Label: "Record Retrieval Legal / Court Records: Retrieval Fee"},
	{Code: "REC.ADMIN.PROCESSING_FEE", Domain: "REC", ServiceItem: "ADMIN", BillingComponent: "PROCESSING_FEE", Label: "Record Retrieval Administrative / Processing Fee"},

	// Cross-domain pass-through and administrative fees
	{Code: "XDOMAIN.PASS_THROUGH.THIRD_PARTY_COST", Domain: "XDOMAIN", ServiceItem: "PASS_THROUGH", BillingComponent: "THIRD_PARTY_COST", Label: "Pass-Through Third-Party Cost"},
	{Code: "XDOMAIN.ADMIN_MISC.ADMIN_FEE", Domain: "XDOMAIN", ServiceItem: "ADMIN_MISC", BillingComponent: "ADMIN_FEE", Label: "Miscellaneous Administrative Fee"},
}
