package twse

import (
	"errors"

	"github.com/wonny/twstrategy/pkg/httputil"
	"github.com/wonny/twstrategy/pkg/logger"
)

// ErrNotReady is returned when the exchange answers without usable data
// (holiday, data not yet published, or a throttled response)
var ErrNotReady = errors.New("twse: data not available")

// Client handles communication with the Taiwan Stock Exchange
// ⭐ SSOT: TWSE 호출은 이 클라이언트에서만
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	baseURL     string
	isinBaseURL string
}

// NewClient creates a new TWSE client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, isinBaseURL string) *Client {
	return &Client{
		httpClient:  httpClient,
		logger:      log.WithField("source", "twse"),
		baseURL:     baseURL,
		isinBaseURL: isinBaseURL,
	}
}
