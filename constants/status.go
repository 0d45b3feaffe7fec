package constants

// JobStatus is the canonical status for rows in check_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"     // queued for processing
	JobStatusRunning   JobStatus = "RUNNING"    // in progress
	JobStatusExtractOK JobStatus = "EXTRACT_OK" // stage 1 completed (text extracted)
	JobStatusSegmented JobStatus = "SEGMENTED"  // stage 2 completed (clauses found)
	JobStatusChecked   JobStatus = "CHECKED"    // stage 3 completed (all clauses evaluated)
	JobStatusFailed    JobStatus = "FAILED"     // terminal failure
)

// ComplianceStatus is the per-clause verdict from the evaluator.
type ComplianceStatus string

const (
	Compliant          ComplianceStatus = "COMPLIANT"
	PartiallyCompliant ComplianceStatus = "PARTIALLY_COMPLIANT"
	NonCompliant       ComplianceStatus = "NON_COMPLIANT"
	EvaluationFailed   ComplianceStatus = "EVALUATION_FAILED"
)

// ComplianceStatuses lists every verdict the evaluator may assign.
var ComplianceStatuses = []ComplianceStatus{
	Compliant, PartiallyCompliant, NonCompliant, EvaluationFailed,
}

// VerdictStrings returns the judgeable verdicts as plain strings for schema
// enums; EVALUATION_FAILED is assigned locally, never by the model.
func VerdictStrings() []string {
	return []string{string(Compliant), string(PartiallyCompliant), string(NonCompliant)}
}
