package hrms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/conneqt/leavebot-go/internal/config"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/session"
)

// workerExpand selects the nested worker resources the profile needs.
const workerExpand = "names,workRelationships"

// workersResponse is the subset of the worker search result we read.
type workersResponse struct {
	Items []struct {
		PersonID     json.Number `json:"PersonId"`
		PersonNumber string      `json:"PersonNumber"`
		Names        []struct {
			DisplayName string `json:"DisplayName"`
		} `json:"names"`
		WorkRelationships []struct {
			LegalEntityID json.Number `json:"LegalEntityId"`
		} `json:"workRelationships"`
	} `json:"items"`
}

// balancesResponse is the subset of the plan balance result we read.
type balancesResponse struct {
	Items []struct {
		Balance float64 `json:"balanceAsOfBalanceCalculationDate"`
	} `json:"items"`
}

// ProfileClient looks up employee profiles in the HR system. Concurrent
// lookups for the same person number share a single request.
type ProfileClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	group      singleflight.Group
}

// NewProfileClient creates a profile lookup client from configuration.
func NewProfileClient(cfg config.HRMSConfig) *ProfileClient {
	return &ProfileClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchProfile resolves a person number to an employee profile, including
// the current annual leave balance. Returns ErrNotFound when the HR system
// has no worker with that number.
func (c *ProfileClient) FetchProfile(ctx context.Context, personNumber string) (*session.UserProfile, error) {
	v, err, _ := c.group.Do(personNumber, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ProfileLookup)
		defer cancel()
		return c.fetchProfile(lookupCtx, personNumber)
	})
	if err != nil {
		return nil, err
	}

	// Copy so shared singleflight results stay immutable
	profile := *v.(*session.UserProfile)
	return &profile, nil
}

func (c *ProfileClient) fetchProfile(ctx context.Context, personNumber string) (*session.UserProfile, error) {
	start := time.Now()

	var workers workersResponse
	query := url.Values{
		"onlyData": {"true"},
		"q":        {"PersonNumber=" + personNumber},
		"expand":   {workerExpand},
	}
	if err := c.get(ctx, "/workers?"+query.Encode(), &workers); err != nil {
		return nil, fmt.Errorf("look up worker %s: %w", personNumber, err)
	}
	if len(workers.Items) == 0 {
		return nil, fmt.Errorf("%w: no worker with person number %s", apperrors.ErrNotFound, personNumber)
	}

	worker := workers.Items[0]
	profile := &session.UserProfile{
		PersonNumber: worker.PersonNumber,
		PersonID:     worker.PersonID.String(),
	}
	if len(worker.Names) > 0 {
		profile.FullName = worker.Names[0].DisplayName
	}
	if len(worker.WorkRelationships) > 0 {
		profile.LegalEntityID = worker.WorkRelationships[0].LegalEntityID.String()
	}

	var balances balancesResponse
	query = url.Values{
		"onlyData": {"true"},
		"q":        {"personId=" + profile.PersonID},
	}
	if err := c.get(ctx, "/planBalances?"+query.Encode(), &balances); err != nil {
		return nil, fmt.Errorf("look up leave balance for %s: %w", personNumber, err)
	}
	if len(balances.Items) > 0 {
		profile.AnnualLeaveBalance = balances.Items[0].Balance
	}

	slog.DebugContext(ctx, "Profile fetched",
		slog.String("person_number", personNumber),
		slog.String("full_name", profile.FullName),
		slog.Float64("balance", profile.AnnualLeaveBalance),
		slog.Duration("duration", time.Since(start)))
	return profile, nil
}

func (c *ProfileClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
