package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient serves every request with respond and records the decoded
// request bodies.
func newTestClient(t *testing.T, respond func(req requestBody) (int, string)) (*Client, *[]requestBody) {
	t.Helper()
	var received []requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected json content type, got %q", got)
		}
		if got := r.Header.Get("Referer"); got != defaultReferer {
			t.Errorf("expected referer %q, got %q", defaultReferer, got)
		}
		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		received = append(received, body)
		status, payload := respond(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return NewClient(Options{Endpoint: srv.URL, Timeout: 5 * time.Second}), &received
}

func TestExecute_SendsOperationEnvelope(t *testing.T) {
	client, received := newTestClient(t, func(requestBody) (int, string) {
		return http.StatusOK, `{"data":{"matchedUser":{"username":"alice","submissionCalendar":"{}"}}}`
	})

	profile, err := client.UserProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Username != "alice" {
		t.Fatalf("expected username alice, got %q", profile.Username)
	}
	if len(*received) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*received))
	}
	req := (*received)[0]
	if req.OperationName != "userProfile" {
		t.Errorf("expected operationName userProfile, got %q", req.OperationName)
	}
	if req.Variables["username"] != "alice" {
		t.Errorf("expected username variable, got %#v", req.Variables)
	}
	if strings.Contains(req.Query, "alice") {
		t.Errorf("username must travel as a variable, not inside the query text")
	}
}

func TestExecute_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name:   "non-2xx status",
			status: http.StatusBadGateway,
			body:   `upstream down`,
			check: func(err error) bool {
				var e *TransportError
				return errors.As(err, &e) && e.StatusCode == http.StatusBadGateway
			},
		},
		{
			name:   "non-2xx status with error envelope",
			status: http.StatusBadRequest,
			body:   `{"errors":[{"message":"Variable \"$username\" got invalid value"}],"data":null}`,
			check: func(err error) bool {
				var e *GraphQLError
				return errors.As(err, &e) &&
					e.StatusCode == http.StatusBadRequest &&
					e.Message == `Variable "$username" got invalid value`
			},
		},
		{
			name:   "graphql errors",
			status: http.StatusOK,
			body:   `{"data":null,"errors":[{"message":"rate limited"},{"message":"again"}]}`,
			check: func(err error) bool {
				var e *GraphQLError
				return errors.As(err, &e) && e.Message == "rate limited" && e.Count == 2
			},
		},
		{
			name:   "null matchedUser",
			status: http.StatusOK,
			body:   `{"data":{"matchedUser":null}}`,
			check: func(err error) bool {
				var e *NotFoundError
				return errors.As(err, &e) && e.Field == "matchedUser"
			},
		},
		{
			name:   "null matchedUser with errors is still not found",
			status: http.StatusOK,
			body:   `{"data":{"matchedUser":null},"errors":[{"message":"That user does not exist."}]}`,
			check: func(err error) bool {
				var e *NotFoundError
				return errors.As(err, &e)
			},
		},
		{
			name:   "malformed envelope",
			status: http.StatusOK,
			body:   `{"data":`,
			check: func(err error) bool {
				var e *DecodeError
				return errors.As(err, &e)
			},
		},
		{
			name:   "wrong field type",
			status: http.StatusOK,
			body:   `{"data":{"matchedUser":{"username":42}}}`,
			check: func(err error) bool {
				var e *DecodeError
				return errors.As(err, &e)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(requestBody) (int, string) {
				return tc.status, tc.body
			})
			_, err := client.UserProfile(context.Background(), "alice")
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.check(err) {
				t.Fatalf("unexpected error class %s: %v", Classify(err), err)
			}
		})
	}
}

func TestProblems_BadRequestKeepsUpstreamMessage(t *testing.T) {
	client, _ := newTestClient(t, func(requestBody) (int, string) {
		return http.StatusBadRequest, `{"errors":[{"message":"Variable \"$limit\" got invalid value"}],"data":null}`
	})

	_, err := client.Problems(context.Background(), nil, 50, 0)
	if got := Classify(err); got != "graphql" {
		t.Fatalf("expected graphql classification, got %s: %v", got, err)
	}
	if !strings.Contains(err.Error(), `got invalid value`) {
		t.Fatalf("expected upstream message in error, got %q", err.Error())
	}
	if Retryable(err) {
		t.Fatalf("expected rejected query not to be retried")
	}
}

func TestExecute_CancelledContextIsTransportError(t *testing.T) {
	client, _ := newTestClient(t, func(requestBody) (int, string) {
		return http.StatusOK, `{"data":{}}`
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.DailyChallenge(ctx)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !Retryable(err) {
		t.Fatalf("expected cancelled request to be retryable")
	}
}

func TestUserProfile_EmptyUsernameSkipsNetwork(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(requestBody) (int, string) {
		atomic.AddInt32(&calls, 1)
		return http.StatusOK, `{"data":{}}`
	})

	_, err := client.UserProfile(context.Background(), "   ")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no request for empty username")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &TransportError{Op: "x", Err: errors.New("reset")}, true},
		{"server error", &TransportError{Op: "x", StatusCode: 503}, true},
		{"too many requests", &TransportError{Op: "x", StatusCode: 429}, true},
		{"bad request", &TransportError{Op: "x", StatusCode: 400}, false},
		{"not found", &NotFoundError{Op: "x", Field: "question"}, false},
		{"decode", &DecodeError{Op: "x", Err: errors.New("bad")}, false},
		{"graphql", &GraphQLError{Op: "x", Message: "bad query"}, false},
		{"graphql bad request", &GraphQLError{Op: "x", Message: "bad query", StatusCode: 400}, false},
		{"graphql rate limited", &GraphQLError{Op: "x", Message: "slow down", StatusCode: 429}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Retryable(tc.err); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
