package constants

// AdaptOutcome records how the LLM stage produced the text of an adapted material.
type AdaptOutcome string

// Stable values (store these exact strings in DB).
const (
	OutcomeAdapted     AdaptOutcome = "ADAPTED"     // model returned rewritten text
	OutcomePassthrough AdaptOutcome = "PASSTHROUGH" // model returned no text; original kept
)

// ProfileStatus is the per-profile state of one batch run.
type ProfileStatus string

const (
	ProfileSucceeded ProfileStatus = "SUCCEEDED"
	ProfileSkipped   ProfileStatus = "SKIPPED"   // missing or invalid profile
	ProfileFailed    ProfileStatus = "FAILED"    // error while adapting
	ProfileCancelled ProfileStatus = "CANCELLED" // batch context ended before start
)
