package cognito

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	httpclient "github.com/astro-web3/token-authorizer/pkg/http"
	"github.com/astro-web3/token-authorizer/pkg/logger"
	"github.com/go-resty/resty/v2"
)

const (
	getUserTarget      = "AWSCognitoIdentityProviderService.GetUser"
	amzTargetHeader    = "X-Amz-Target"
	amzJSONContentType = "application/x-amz-json-1.1"

	throttledType = "TooManyRequestsException"
)

// revokedTypes are the oracle error types that mean the token itself is no
// longer honored, as opposed to the oracle being unable to answer.
var revokedTypes = map[string]struct{}{
	"NotAuthorizedException":         {},
	"UserNotFoundException":          {},
	"UserNotConfirmedException":      {},
	"PasswordResetRequiredException": {},
}

type client struct {
	endpoint string
	http     *httpclient.Client
	timeout  time.Duration
}

// NewClient builds the oracle client. timeout bounds the whole check,
// including the single throttle retry; retryWait is the backoff before that
// retry. The retry never fires for any other failure class.
func NewClient(endpoint string, timeout, retryWait time.Duration) RevocationOracle {
	endpoint = strings.TrimSuffix(endpoint, "/")
	return &client{
		endpoint: endpoint,
		http: httpclient.New(httpclient.Config{
			Timeout:        timeout,
			RetryCount:     1,
			RetryWaitTime:  retryWait,
			RetryCondition: isThrottled,
		}),
		timeout: timeout,
	}
}

// CheckToken asks the oracle who holds the token, supplying the raw token
// as the call's credential. The oracle is the sole authenticity check in
// the pipeline; nothing before it has verified a signature.
func (c *client) CheckToken(ctx context.Context, accessToken string) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The amz-json content type is not a standard JSON media type, so the
	// body is marshaled by hand instead of relying on resty's detection.
	body, err := json.Marshal(getUserRequest{AccessToken: accessToken})
	if err != nil {
		return &CheckResult{
			Status: StatusUnavailable,
			Reason: fmt.Sprintf("marshal oracle request: %v", err),
		}
	}

	resp, err := c.http.Post(
		ctx,
		c.endpoint+"/",
		httpclient.WithContentType(amzJSONContentType),
		httpclient.WithHeader(amzTargetHeader, getUserTarget),
		httpclient.WithBody(body),
	)
	if err != nil {
		logger.WarnContext(ctx, "revocation check transport failure", slog.String("error", err.Error()))
		return &CheckResult{
			Status: StatusUnavailable,
			Reason: fmt.Sprintf("oracle call failed: %v", err),
		}
	}

	if resp.IsSuccess() {
		var out getUserResponse
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return &CheckResult{
				Status: StatusUnavailable,
				Reason: fmt.Sprintf("undecodable oracle response: %v", err),
			}
		}
		return &CheckResult{
			Status:    StatusActive,
			Principal: out.Username,
		}
	}

	apiErr := parseAPIError(resp.Body())
	if _, revoked := revokedTypes[apiErr.Type]; revoked {
		return &CheckResult{
			Status: StatusRevoked,
			Reason: fmt.Sprintf("%s: %s", apiErr.Type, apiErr.Message),
		}
	}

	return &CheckResult{
		Status: StatusUnavailable,
		Reason: fmt.Sprintf("oracle returned status %d (%s)", resp.StatusCode(), apiErr.Type),
	}
}

// isThrottled is the only retry trigger: an explicit throttle answer from
// the oracle. Transport errors and timeouts are not retried, the remaining
// deadline is better spent failing closed.
func isThrottled(resp *resty.Response, err error) bool {
	if err != nil || resp == nil {
		return false
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return true
	}
	return parseAPIError(resp.Body()).Type == throttledType
}

// parseAPIError decodes the amz-json error envelope. The content type is
// not a standard JSON media type, so the body is decoded by hand. Some
// deployments prefix the type with a namespace ("com.amazon...#Name").
func parseAPIError(body []byte) apiError {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	if idx := strings.LastIndex(apiErr.Type, "#"); idx >= 0 {
		apiErr.Type = apiErr.Type[idx+1:]
	}
	return apiErr
}
