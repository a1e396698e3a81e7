package portrait

// EditRequest is the input to one SingleEditApplier call.
type EditRequest struct {
	Image    []byte
	MIME     string
	Fix      PlannedFix
	Analysis *AnalysisResult
	Profile  VariationProfile

	// Attempt is 1-based. PriorFeedback holds the validator feedback from the
	// previous attempt of the same step, if any.
	Attempt       int
	PriorFeedback string
}

// EditResult is a successfully edited image.
type EditResult struct {
	Image []byte
	MIME  string
	Notes string
}

// ValidationRequest is the input to one StepValidator call.
type ValidationRequest struct {
	Before     []byte
	BeforeMIME string
	After      []byte
	AfterMIME  string
	Fix        PlannedFix

	// Reference is the downscaled original used as the identity anchor. It
	// may be nil when it could not be built.
	Reference *Reference
}

// Reference is the request-scoped identity anchor derived from the original
// image. Hash is the hex SHA-256 of the original bytes.
type Reference struct {
	Image []byte
	MIME  string
	Notes string
	Hash  string
}
