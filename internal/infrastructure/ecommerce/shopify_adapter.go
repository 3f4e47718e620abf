package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/feedbridge/backend/internal/domain/integration"
)

// maxShopifyResponseSize limits the response body size to prevent memory
// exhaustion
const maxShopifyResponseSize = 10 * 1024 * 1024 // 10MB max response

// jsonlMimeType is the MIME type declared for staged bulk mutation files
const jsonlMimeType = "application/jsonl"

const stagedUploadsCreateMutation = `mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters { name value }
    }
    userErrors { field message }
  }
}`

const bulkOperationRunMutation = `mutation bulkOperationRunMutation($mutation: String!, $stagedUploadPath: String!) {
  bulkOperationRunMutation(mutation: $mutation, stagedUploadPath: $stagedUploadPath) {
    bulkOperation {
      id
      status
      errorCode
      createdAt
      completedAt
      objectCount
      url
    }
    userErrors { field message }
  }
}`

// productCreateMutation is the per-line mutation the bulk job applies to each
// JSONL input object.
const productCreateMutation = `mutation call($input: ProductInput!) {
  productCreate(input: $input) {
    product { id }
    userErrors { field message }
  }
}`

// ShopifyAdapter implements the CommercePlatform interface against the
// Shopify Admin GraphQL API.
type ShopifyAdapter struct {
	config       *ShopifyConfig
	apiClient    *http.Client
	uploadClient *http.Client
}

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig) (*ShopifyAdapter, error) {
	if config == nil {
		return nil, integration.ErrPlatformNotConfigured
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ShopifyAdapter{
		config: config,
		apiClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		uploadClient: &http.Client{
			Timeout: time.Duration(config.UploadTimeoutSeconds) * time.Second,
		},
	}, nil
}

// CreateStagedUpload requests a temporary signed upload target for a bulk
// mutation variables file. Platform user errors are surfaced as
// ErrPlatformUserError even on a successful transport response.
func (a *ShopifyAdapter) CreateStagedUpload(ctx context.Context, req integration.StagedUploadRequest) (*integration.StagedUpload, error) {
	variables := map[string]any{
		"input": []map[string]any{
			{
				"filename":   req.Filename,
				"mimeType":   req.MimeType,
				"resource":   req.Resource,
				"httpMethod": "PUT",
				// The API declares fileSize as an unsigned int string
				"fileSize": strconv.FormatInt(req.FileSize, 10),
			},
		},
	}

	respBody, err := a.doGraphQL(ctx, stagedUploadsCreateMutation, variables)
	if err != nil {
		return nil, err
	}

	var resp stagedUploadsCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if msg, ok := hasErrors(resp.Errors); ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, msg)
	}
	if err := integration.UserErrorsToError(toUserErrors(resp.Data.StagedUploadsCreate.UserErrors)); err != nil {
		return nil, err
	}

	targets := resp.Data.StagedUploadsCreate.StagedTargets
	if len(targets) == 0 {
		return nil, integration.ErrStagedUploadMissing
	}

	target := targets[0]
	staged := &integration.StagedUpload{
		URL:         target.URL,
		ResourceURL: target.ResourceURL,
	}
	for _, p := range target.Parameters {
		staged.Parameters = append(staged.Parameters, integration.StagedUploadParameter{
			Name:  p.Name,
			Value: p.Value,
		})
	}
	return staged, nil
}

// UploadFile streams the serialized file to the staged target with a raw PUT
// whose body is the file's exact byte length. The staged target's form
// parameters are intentionally unused by this transfer method. The file
// handle is released on every exit path.
func (a *ShopifyAdapter) UploadFile(ctx context.Context, staged *integration.StagedUpload, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("shopify: cannot open upload file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("shopify: cannot stat upload file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, staged.URL, file)
	if err != nil {
		return fmt.Errorf("shopify: cannot build upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", jsonlMimeType)

	resp, err := a.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxShopifyResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: upload returned status %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}
	return nil
}

// RunBulkMutation starts the asynchronous bulk product-create job consuming
// the uploaded file, referenced by its remote resource locator.
func (a *ShopifyAdapter) RunBulkMutation(ctx context.Context, resourceURL string) (*integration.BulkImportJob, error) {
	variables := map[string]any{
		"mutation":         productCreateMutation,
		"stagedUploadPath": resourceURL,
	}

	respBody, err := a.doGraphQL(ctx, bulkOperationRunMutation, variables)
	if err != nil {
		return nil, err
	}

	var resp bulkOperationRunResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if msg, ok := hasErrors(resp.Errors); ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, msg)
	}
	if err := integration.UserErrorsToError(toUserErrors(resp.Data.BulkOperationRunMutation.UserErrors)); err != nil {
		return nil, err
	}

	op := resp.Data.BulkOperationRunMutation.BulkOperation
	if op == nil {
		return nil, fmt.Errorf("%w: no bulk operation returned", integration.ErrPlatformInvalidResponse)
	}

	job := &integration.BulkImportJob{
		ID:        op.ID,
		Status:    op.Status,
		ErrorCode: op.ErrorCode,
	}
	if op.ObjectCount != "" {
		if n, err := strconv.ParseInt(op.ObjectCount, 10, 64); err == nil {
			job.ObjectCount = n
		}
	}
	if op.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, op.CreatedAt); err == nil {
			job.CreatedAt = t
		}
	}
	if op.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, op.CompletedAt); err == nil {
			job.CompletedAt = &t
		}
	}
	return job, nil
}

// doGraphQL posts one GraphQL request and returns the raw response body.
// Transport failures and non-2xx statuses map to ErrPlatformRequestFailed.
func (a *ShopifyAdapter) doGraphQL(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("shopify: cannot marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.GraphQLEndpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopify: cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)

	resp, err := a.apiClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxShopifyResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d: %s", integration.ErrPlatformRequestFailed, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// Compile-time interface compliance check
var _ integration.CommercePlatform = (*ShopifyAdapter)(nil)
