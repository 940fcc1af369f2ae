package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldStatus             = "status"
	fieldSurvivalScore      = "survival_score"
	fieldAllocationDecision = "allocation_decision"
	fieldExplanation        = "explanation"
	fieldUpdatedAt          = "updated_at"
	fieldEnable             = "enable"
	fieldReaded             = "readed"
)
