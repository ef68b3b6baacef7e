package hrms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneqt/leavebot-go/internal/catalog"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/session"
)

func testProfile() *session.UserProfile {
	return &session.UserProfile{
		PersonNumber:       "100200",
		PersonID:           "300000001111111",
		FullName:           "Alex Morgan",
		LegalEntityID:      "300000002222222",
		AnnualLeaveBalance: 18.5,
	}
}

func annualLeaveState(t *testing.T) (session.State, *catalog.LeaveType) {
	t.Helper()

	lt, err := catalog.Lookup("Annual Leave")
	require.NoError(t, err)

	st := session.State{}
	st.SetLeaveType(lt.Name)
	st.Set(catalog.FieldStartDate, "2024-10-14")
	st.Set(catalog.FieldEndDate, "2024-10-18")
	st.Set(catalog.FieldStartDayType, true)
	st.Set(catalog.FieldEndDayType, true)
	st.Set("advanceSalary", false)
	st.Set("leaveDestination", "local")
	return st, lt
}

func TestBuildPayload(t *testing.T) {
	st, lt := annualLeaveState(t)

	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	assert.Equal(t, "100200", payload.PersonNumber)
	assert.Equal(t, "300000002222222", payload.LegalEntityID)
	assert.Equal(t, "Annual Leave", payload.AbsenceType)
	assert.Equal(t, "2024-10-14", payload.StartDate)
	assert.Equal(t, "2024-10-18", payload.EndDate)
	assert.Equal(t, float64(1), payload.StartDateDuration)
	assert.Equal(t, float64(1), payload.EndDateDuration)
	assert.Equal(t, "SUBMITTED", payload.AbsenceStatusCd)

	require.Len(t, payload.AbsenceRecording, 1)
	flex := payload.AbsenceRecording[0]
	assert.Equal(t, "Annual Leave", flex.FlexContextDisplayValue)
	assert.Equal(t, "N", flex.AdvanceSalary)
	assert.Equal(t, "No", flex.AdvanceSalaryDisplay)
	assert.Equal(t, "Local", flex.LeaveDestination)
}

func TestBuildPayloadHalfDays(t *testing.T) {
	st, lt := annualLeaveState(t)
	st.Set(catalog.FieldStartDayType, false)
	st.Set(catalog.FieldEndDayType, false)

	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	assert.Equal(t, 0.5, payload.StartDateDuration)
	assert.Equal(t, 0.5, payload.EndDateDuration)
}

func TestBuildPayloadAdvanceSalaryAbroad(t *testing.T) {
	st, lt := annualLeaveState(t)
	st.Set("advanceSalary", true)
	st.Set("leaveDestination", "Abroad")

	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	flex := payload.AbsenceRecording[0]
	assert.Equal(t, "Y", flex.AdvanceSalary)
	assert.Equal(t, "Yes", flex.AdvanceSalaryDisplay)
	assert.Equal(t, "Abroad", flex.LeaveDestination)
}

func TestBuildPayloadMissingProfile(t *testing.T) {
	st, lt := annualLeaveState(t)

	_, err := BuildPayload(nil, lt, st)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestBuildPayloadMissingDates(t *testing.T) {
	lt, err := catalog.Lookup("Annual Leave")
	require.NoError(t, err)

	st := session.State{}
	st.SetLeaveType(lt.Name)

	_, err = BuildPayload(testProfile(), lt, st)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func testClient(baseURL string, maxRetries int) *Client {
	return &Client{
		baseURL:      baseURL,
		username:     "integration",
		password:     "secret",
		maxRetries:   maxRetries,
		initialDelay: time.Millisecond,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSubmitSuccess(t *testing.T) {
	var received Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/absences", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "integration", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	st, lt := annualLeaveState(t)
	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	err = testClient(server.URL, 0).Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "Annual Leave", received.AbsenceType)
	assert.Equal(t, "SUBMITTED", received.AbsenceStatusCd)
}

func TestSubmitClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"absence overlaps an existing request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	st, lt := annualLeaveState(t)
	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	err = testClient(server.URL, 3).Submit(context.Background(), payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSubmission)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")

	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, http.StatusBadRequest, subErr.StatusCode)
}

func TestSubmitRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	st, lt := annualLeaveState(t)
	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	err = testClient(server.URL, 3).Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitRateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer server.Close()

	st, lt := annualLeaveState(t)
	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	err = testClient(server.URL, 1).Submit(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimitExceeded(err), "throttling must be distinguishable from other failures")
	assert.ErrorIs(t, err, apperrors.ErrSubmission)
	assert.Equal(t, int32(2), calls.Load(), "throttled requests stay retryable")
}

func TestSubmitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	st, lt := annualLeaveState(t)
	payload, err := BuildPayload(testProfile(), lt, st)
	require.NoError(t, err)

	err = testClient(server.URL, 2).Submit(context.Background(), payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSubmission)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}
