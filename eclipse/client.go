package eclipse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// PickTask is one open warehouse picking task as reported by the Eclipse
// API. This is the input contract of reconciliation; the core never owns
// this wire shape.
type PickTask struct {
	OrderId                 string   `json:"orderId"`
	GenerationId            int      `json:"generationId"`
	InvoiceId               string   `json:"invoiceId"`
	BranchId                string   `json:"branchId"`
	PickGroup               string   `json:"pickGroup"`
	AssignedUserId          string   `json:"assignedUserId"`
	BillTo                  int      `json:"billTo"`
	ShipTo                  int      `json:"shipTo"`
	ShipToName              string   `json:"shipToName"`
	PickCount               string   `json:"pickCount"`
	ShipVia                 string   `json:"shipVia"`
	IsFromMultipleZones     bool     `json:"isFromMultipleZones"`
	TaskState               string   `json:"taskState"`
	TaskWeight              float64  `json:"taskWeight"`
	PickAndPassBlink        bool     `json:"pickAndPassBlink"`
	PickPriority            string   `json:"pickPriority"`
	TransferShippingBranch  string   `json:"transferShippingBranch"`
	TransferReceivingBranch string   `json:"transferReceivingBranch"`
	Totes                   []string `json:"totes"`
}

type pickTaskMetadata struct {
	StartIndex int `json:"startIndex"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
}

type pickTaskResponse struct {
	Metadata pickTaskMetadata `json:"metadata"`
	Results  []PickTask       `json:"results"`
}

type sessionRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginType string `json:"loginType,omitempty"`
}

type sessionResponse struct {
	ID                      string   `json:"id"`
	SessionToken            string   `json:"sessionToken"`
	RefreshToken            string   `json:"refreshToken"`
	ApplicationKey          string   `json:"applicationKey"`
	DeveloperKey            string   `json:"developerKey"`
	ClientDescription       string   `json:"clientDescription"`
	DeviceId                string   `json:"deviceId"`
	WorkstationId           string   `json:"workstationId"`
	PrinterLocationId       string   `json:"printerLocationId"`
	ValidPrinterLocationIds []string `json:"validPrinterLocationIds"`
	CreationDateTime        string   `json:"creationDateTime"`
	LastUsedDateTime        string   `json:"lastUsedDateTime"`
}

// Client talks to the Eclipse ERP HTTP API. Calls are rate limited through
// a shared tick channel to stay under the vendor's request budget.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	limiter  <-chan time.Time
}

func NewClient() (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("ECLIPSE_URL"))
	if baseURL == "" {
		return nil, errors.New("ECLIPSE_URL is empty")
	}
	username := strings.TrimSpace(os.Getenv("ECLIPSE_USER"))
	password := os.Getenv("ECLIPSE_PASS")
	if username == "" || password == "" {
		return nil, errors.New("eclipse credentials are empty")
	}

	rateLimitPerMin := int64(30)
	if v := strings.TrimSpace(os.Getenv("ECLIPSE_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  time.Tick(interval),
	}, nil
}

// FetchOpenTasks returns the branch's currently-open pick tasks. The single
// 200-item page is treated as the full open set for the branch.
func (c *Client) FetchOpenTasks(ctx context.Context, token string, branchId string) ([]PickTask, int, error) {
	<-c.limiter

	params := url.Values{}
	params.Set("branchId", branchId)
	params.Set("userId", "ALL")
	params.Set("pageSize", "200")
	endpoint := c.baseURL + "/WarehouseTasks/PickTasks?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("sessionToken", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("eclipse api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed pickTaskResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, resp.StatusCode, err
	}
	return parsed.Results, resp.StatusCode, nil
}

func (c *Client) createSession(ctx context.Context) (*sessionResponse, int, error) {
	<-c.limiter

	payload, err := json.Marshal(sessionRequest{
		Username:  c.username,
		Password:  c.password,
		LoginType: "Employee",
	})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Sessions", strings.NewReader(string(payload)))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("eclipse login error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, resp.StatusCode, err
	}
	if strings.TrimSpace(parsed.SessionToken) == "" {
		return nil, resp.StatusCode, errors.New("eclipse login returned an empty session token")
	}
	return &parsed, resp.StatusCode, nil
}

func parseEclipseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now()
}
