package constant

// Sentinel markers. Quality-check responses MUST end with exactly one of
// these after trimming and case-normalizing; the rewrite step parses them
// mechanically, so the literals are part of the wire contract.
const (
	VerdictAllClear    = "ALL CLEAR."
	VerdictIssuesFound = "ISSUES FOUND."

	// Returned by the rewrite model when the draft needs no changes.
	RewriteNoRevisions = "NO REVISIONS NEEDED."
)

// Quality check names. The feedback map keys are this closed set.
const (
	CheckInstruction = "instruction"
	CheckAccuracy    = "accuracy"
	CheckPrecision   = "precision"
	CheckCompanyFit  = "company_fit"
	CheckUserFit     = "user_fit"
	CheckHuman       = "human"
)

// CheckNames lists all quality checks in stable order.
var CheckNames = []string{
	CheckInstruction,
	CheckAccuracy,
	CheckPrecision,
	CheckCompanyFit,
	CheckUserFit,
	CheckHuman,
}

const (
	// Retrieval bounds: nearest-neighbour fan-in and rerank shortlist.
	RetrievalTopN = 7
	RerankTopK    = 3

	// Attempts (1 + retries) before a missing sentinel is forced to the
	// issues-found verdict.
	SentinelMaxAttempts = 3

	// Bounded pool for concurrent quality checks.
	CheckWorkers = 6
)

// Phase names, as they appear in progress events and API responses.
const (
	PhaseExtraction = "extraction"
	PhaseBackground = "background"
	PhaseDraft      = "draft"
	PhaseRefine     = "refine"
)

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"
)
