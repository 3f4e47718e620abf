package ecommerce

import (
	"encoding/json"

	"github.com/feedbridge/backend/internal/domain/integration"
)

// graphQLRequest is the envelope of every Admin API call. Variables is never
// nil: the API expects an empty object, not null, when a query takes no
// variables.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphQLError is one top-level GraphQL error
type graphQLError struct {
	Message string `json:"message"`
}

// shopifyUserError mirrors the platform's userErrors shape
type shopifyUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func toUserErrors(errs []shopifyUserError) []integration.UserError {
	out := make([]integration.UserError, 0, len(errs))
	for _, e := range errs {
		out = append(out, integration.UserError{Field: e.Field, Message: e.Message})
	}
	return out
}

// stagedTarget is one staged upload slot returned by stagedUploadsCreate
type stagedTarget struct {
	URL         string `json:"url"`
	ResourceURL string `json:"resourceUrl"`
	Parameters  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"parameters"`
}

// stagedUploadsCreateResponse is the stagedUploadsCreate mutation response
type stagedUploadsCreateResponse struct {
	Data struct {
		StagedUploadsCreate struct {
			StagedTargets []stagedTarget     `json:"stagedTargets"`
			UserErrors    []shopifyUserError `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// bulkOperation is the remote bulk job as returned by the trigger mutation
type bulkOperation struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ErrorCode   string `json:"errorCode"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt"`
	ObjectCount string `json:"objectCount"`
	URL         string `json:"url"`
}

// bulkOperationRunResponse is the bulkOperationRunMutation response
type bulkOperationRunResponse struct {
	Data struct {
		BulkOperationRunMutation struct {
			BulkOperation *bulkOperation     `json:"bulkOperation"`
			UserErrors    []shopifyUserError `json:"userErrors"`
		} `json:"bulkOperationRunMutation"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// hasErrors reports top-level GraphQL errors on any response
func hasErrors(errs []graphQLError) (string, bool) {
	if len(errs) == 0 {
		return "", false
	}
	msgs, _ := json.Marshal(errs)
	return string(msgs), true
}
