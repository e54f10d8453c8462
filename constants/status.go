package constants

// DocStatus is the per-document outcome reported in a run summary.
type DocStatus string

const (
	DocStatusOK     DocStatus = "OK"     // normalized and merged
	DocStatusFailed DocStatus = "FAILED" // see the failure entry for the stage
)
