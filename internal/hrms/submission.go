// Package hrms provides the REST boundary to the HR system: employee
// profile lookups and leave-request submission.
package hrms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/conneqt/leavebot-go/internal/catalog"
	"github.com/conneqt/leavebot-go/internal/config"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/session"
)

// flexContext identifies the descriptive flexfield segment group the HR
// system expects on absence records.
const flexContext = "300000009102443"

// submittedStatus is the absence status code for a new request.
const submittedStatus = "SUBMITTED"

// FlexEntry is one descriptive flexfield row on an absence record.
type FlexEntry struct {
	FlexContext             string `json:"__FLEX_Context"`
	FlexContextDisplayValue string `json:"__FLEX_Context_DisplayValue"`
	AdvanceSalary           string `json:"annualLeaveAdvanceSalary"`
	AdvanceSalaryDisplay    string `json:"annualLeaveAdvanceSalary_Display"`
	LeaveDestination        string `json:"leaveDestination"`
}

// Payload is the absence record posted to the HR system.
type Payload struct {
	PersonNumber      string      `json:"personNumber"`
	LegalEntityID     string      `json:"legalEntityId"`
	AbsenceType       string      `json:"absenceType"`
	StartDateDuration float64     `json:"startDateDuration"`
	EndDateDuration   float64     `json:"endDateDuration"`
	StartDate         string      `json:"startDate"`
	EndDate           string      `json:"endDate"`
	AbsenceStatusCd   string      `json:"absenceStatusCd"`
	AbsenceRecording  []FlexEntry `json:"absenceRecordingDFF"`
}

// BuildPayload assembles the absence record from the employee profile and
// the collected request fields. The caller must have verified that all
// mandatory fields for the leave type are present.
func BuildPayload(profile *session.UserProfile, lt *catalog.LeaveType, state session.State) (*Payload, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: missing employee profile", apperrors.ErrInvalidInput)
	}

	startDate := state.StringValue(catalog.FieldStartDate)
	endDate := state.StringValue(catalog.FieldEndDate)
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: missing leave dates", apperrors.ErrInvalidInput)
	}

	advance := "N"
	advanceDisplay := "No"
	if state.BoolValue("advanceSalary", false) {
		advance = "Y"
		advanceDisplay = "Yes"
	}

	destination := "Local"
	if v := state.StringValue("leaveDestination"); strings.EqualFold(v, "abroad") {
		destination = "Abroad"
	}

	return &Payload{
		PersonNumber:      profile.PersonNumber,
		LegalEntityID:     profile.LegalEntityID,
		AbsenceType:       lt.Name,
		StartDateDuration: dayDuration(state, catalog.FieldStartDayType),
		EndDateDuration:   dayDuration(state, catalog.FieldEndDayType),
		StartDate:         startDate,
		EndDate:           endDate,
		AbsenceStatusCd:   submittedStatus,
		AbsenceRecording: []FlexEntry{
			{
				FlexContext:             flexContext,
				FlexContextDisplayValue: lt.Name,
				AdvanceSalary:           advance,
				AdvanceSalaryDisplay:    advanceDisplay,
				LeaveDestination:        destination,
			},
		},
	}, nil
}

// dayDuration maps a full-day boolean field to the HR system's duration
// value: 1 for a full day, 0.5 for a half day. Missing fields count as
// full days.
func dayDuration(state session.State, field string) float64 {
	if !state.BoolValue(field, true) {
		return 0.5
	}
	return 1
}

// Client submits absence records to the HR system.
type Client struct {
	baseURL      string
	username     string
	password     string
	maxRetries   int
	initialDelay time.Duration
	httpClient   *http.Client
}

// NewClient creates an HR submission client from configuration.
func NewClient(cfg config.HRMSConfig) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		username:     cfg.Username,
		password:     cfg.Password,
		maxRetries:   cfg.MaxRetries,
		initialDelay: config.HRMSRetryInitial,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Submit posts an absence record. Only HTTP 200 and 201 count as success;
// any other status yields a SubmissionError. Server-side failures are
// retried with backoff, client-side rejections are not.
func (c *Client) Submit(ctx context.Context, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal absence payload: %w", err)
	}

	url := c.baseURL + "/absences"

	err = RetryWithBackoff(ctx, c.maxRetries, c.initialDelay, func() error {
		return c.post(ctx, url, body)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Absence submitted",
		slog.String("absence_type", payload.AbsenceType),
		slog.String("start_date", payload.StartDate),
		slog.String("end_date", payload.EndDate))
	return nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return markPermanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewSubmissionError(url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	subErr := apperrors.NewSubmissionError(url, resp.StatusCode, fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(detail))))

	// 429 stays retryable and is marked so callers can tell the
	// employee the HR system is busy rather than broken.
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", apperrors.ErrRateLimitExceeded, subErr)
	}

	// Other 4xx means the request itself is bad, retrying won't help
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return markPermanent(subErr)
	}
	return subErr
}
