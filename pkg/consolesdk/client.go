package consolesdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

// SDKClient is a client for the accounting backend.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the backend at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}
