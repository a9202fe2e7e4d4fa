// Package plaid provides a client for interacting with the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"

	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/service"
)

// Config holds Plaid API configuration. Access tokens are per linked
// account and passed to Sync directly.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("plaid client ID is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("plaid secret is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("plaid environment is required")
	}

	validEnvs := map[string]bool{
		"sandbox":    true,
		"production": true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid Plaid environment: must be sandbox or production")
	}

	return nil
}

// Client implements the TransactionSyncer interface on top of the Plaid
// transactions/sync endpoint.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	environment string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		environment: cfg.Environment,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// syncPageSize is Plaid's maximum transactions/sync page size.
const syncPageSize = int32(500)

// Sync fetches one page of the transactions/sync delta for the account
// behind accessToken, starting from cursor (empty for a full resync).
// Callers loop while HasMore is set and persist NextCursor after each
// successfully applied page. UserID is left empty on the returned events;
// the caller stamps the owning user.
func (c *Client) Sync(ctx context.Context, accessToken, cursor string) (*model.SyncDelta, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	var delta *model.SyncDelta
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewTransactionsSyncRequest(accessToken)
		request.SetCount(syncPageSize)
		if cursor != "" {
			request.SetCursor(cursor)
		}

		resp, _, err := c.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
		if err != nil {
			if plaidError := extractPlaidError(err); plaidError != nil {
				if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
					c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
					return &common.RetryableError{Err: err, Retryable: true}
				}
				return fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
			}
			return fmt.Errorf("failed to sync transactions: %w", err)
		}

		delta = &model.SyncDelta{
			NextCursor: resp.GetNextCursor(),
			HasMore:    resp.GetHasMore(),
			Added:      make([]model.TransactionEvent, 0, len(resp.GetAdded())),
			Modified:   make([]model.TransactionEvent, 0, len(resp.GetModified())),
			Removed:    make([]string, 0, len(resp.GetRemoved())),
		}
		for _, pt := range resp.GetAdded() {
			delta.Added = append(delta.Added, c.mapTransaction(pt, model.EventAdded))
		}
		for _, pt := range resp.GetModified() {
			delta.Modified = append(delta.Modified, c.mapTransaction(pt, model.EventModified))
		}
		for _, removed := range resp.GetRemoved() {
			delta.Removed = append(delta.Removed, removed.GetTransactionId())
		}

		c.logger.Debug("Fetched sync page",
			"added", len(delta.Added),
			"modified", len(delta.Modified),
			"removed", len(delta.Removed),
			"has_more", delta.HasMore)
		return nil
	}, *c.retryOpts)

	if retryErr != nil {
		return nil, retryErr
	}
	return delta, nil
}

// mapTransaction converts a Plaid transaction to a sync event.
func (c *Client) mapTransaction(pt plaid.Transaction, kind model.EventKind) model.TransactionEvent {
	occurredAt := pt.GetDatetime()
	if occurredAt.IsZero() {
		parsed, err := time.Parse("2006-01-02", pt.GetDate())
		if err != nil {
			c.logger.Error("Failed to parse transaction date", "date", pt.GetDate(), "error", err)
			parsed = time.Now().UTC()
		}
		occurredAt = parsed
	}

	merchantName := pt.GetMerchantName()
	if merchantName == "" {
		merchantName = pt.GetName()
	}
	merchantName = cleanMerchantName(merchantName)

	pfc := pt.GetPersonalFinanceCategory()

	return model.TransactionEvent{
		ID:           pt.GetTransactionId(),
		Kind:         kind,
		MerchantName: merchantName,
		MerchantID:   pt.GetMerchantEntityId(),
		RawCategory:  pfc.GetDetailed(),
		Amount:       decimal.NewFromFloat(pt.GetAmount()),
		OccurredAt:   occurredAt,
		Pending:      pt.GetPending(),
	}
}

// cleanMerchantName standardizes merchant names by removing common suffixes and normalizing format.
func cleanMerchantName(name string) string {
	// Convert to title case manually to avoid deprecated strings.Title
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		if word != "" {
			runes := []rune(word)
			for j := 0; j < len(runes); j++ {
				if j == 0 || (j > 0 && !isLetter(runes[j-1])) {
					runes[j] = toUpper(runes[j])
				}
			}
			words[i] = string(runes)
		}
	}
	name = strings.Join(words, " ")

	// If the last part is all digits and longer than 5 chars, it's probably a transaction ID
	parts := strings.Fields(name)
	if len(parts) > 1 {
		lastPart := parts[len(parts)-1]
		if len(lastPart) > 5 && isAllDigits(lastPart) {
			parts = parts[:len(parts)-1]
		}
	}
	name = strings.Join(parts, " ")

	// Remove common payment processor suffixes
	suffixes := []string{
		" Llc",
		" Inc",
		" Corp",
		" Corporation",
		" Company",
		" Co",
		" Ltd",
		" Limited",
	}

	// Keep removing suffixes until none are found (handles multiple suffixes)
	changed := true
	for changed {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

// isAllDigits checks if a string contains only digits.
func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isLetter checks if a rune is a letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// toUpper converts a rune to uppercase.
func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

// CreateLinkToken creates a Link token for Plaid Link initialization.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: userID,
	}

	request := plaid.NewLinkTokenCreateRequest(
		"Tasteflow",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	// OAuth banks require a redirect URI in production; must match the
	// Plaid dashboard configuration.
	if c.environment == "production" {
		request.SetRedirectUri("https://localhost:8080/")
	}

	resp, _, err := c.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		if plaidError := extractPlaidError(err); plaidError != nil {
			return "", fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
		}
		return "", fmt.Errorf("failed to create link token: %w", err)
	}

	return resp.GetLinkToken(), nil
}

// ExchangePublicToken exchanges a public token from Link for an access
// token and item ID.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		if plaidError := extractPlaidError(err); plaidError != nil {
			return "", "", fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
		}
		return "", "", fmt.Errorf("failed to exchange public token: %w", err)
	}

	return resp.GetAccessToken(), resp.GetItemId(), nil
}

// Institution represents a bank or financial institution.
type Institution struct {
	ID                   string
	Name                 string
	OAuth                bool
	SupportsTransactions bool
}

// SearchInstitutions searches for financial institutions by name.
func (c *Client) SearchInstitutions(ctx context.Context, query string, limit int) ([]Institution, error) {
	request := plaid.NewInstitutionsSearchRequest(
		query,
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	options := plaid.InstitutionsSearchRequestOptions{
		IncludeOptionalMetadata: plaid.PtrBool(true),
	}
	request.SetOptions(options)

	resp, _, err := c.client.PlaidApi.InstitutionsSearch(ctx).InstitutionsSearchRequest(*request).Execute()
	if err != nil {
		if plaidError := extractPlaidError(err); plaidError != nil {
			return nil, fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
		}
		return nil, fmt.Errorf("failed to search institutions: %w", err)
	}

	// Apply limit on our side since API doesn't support it
	institutions := make([]Institution, 0, limit)
	for i, inst := range resp.GetInstitutions() {
		if i >= limit {
			break
		}

		supportsTransactions := false
		for _, product := range inst.GetProducts() {
			if product == plaid.PRODUCTS_TRANSACTIONS {
				supportsTransactions = true
				break
			}
		}

		institutions = append(institutions, Institution{
			ID:                   inst.GetInstitutionId(),
			Name:                 inst.GetName(),
			OAuth:                inst.GetOauth(),
			SupportsTransactions: supportsTransactions,
		})
	}

	return institutions, nil
}

// Ensure Client implements TransactionSyncer interface.
var _ service.TransactionSyncer = (*Client)(nil)
