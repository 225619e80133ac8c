package attendanced

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/serviceutil"
	"attendance-backend/lib/testutil"
	"attendance-backend/services/accounts"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupServer(t testing.TB) (Client, *fakeRetriever) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/attendance",
		DbSchema: accounts.Schema,
	})
	t.Cleanup(cleanup)

	retriever := &fakeRetriever{
		failures: map[string]error{
			"rejected": &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"},
			"broken":   &Error{Kind: KindParse, Message: "failed to parse attendance report: student id not found"},
		},
	}
	queue, _, _ := startQueue(t, retriever)
	store := accounts.NewService(res.DB, accounts.Options{})

	server := httptest.NewServer(NewHandler(queue, store))
	t.Cleanup(server.Close)

	return NewClient(server.URL), retriever
}

func postJson(t testing.TB, url string, body any) (*http.Response, ErrorResponse) {
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var out ErrorResponse
	err = json.NewDecoder(res.Body).Decode(&out)
	if err != nil {
		t.Fatal(err)
	}
	return res, out
}

func TestStatus(t *testing.T) {
	client, _ := setupServer(t)

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, StatusResponse{Status: "online", Queued: 0}, status)
}

func TestCheck(t *testing.T) {
	client, retriever := setupServer(t)
	ctx := waitCtx(t)

	record, err := client.Check(ctx, attendance.Credential{Identifier: "alice", Secret: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "alice", record.StudentId)
	require.Equal(t, 3, record.TotalPresent)
	require.Equal(t, 4, record.TotalClasses)
	require.True(t, record.AboveThreshold)
	require.Equal(t, []string{"alice"}, retriever.Calls())

	_, err = client.Check(ctx, attendance.Credential{Identifier: "rejected", Secret: "secret"})
	var retrievalErr *Error
	require.True(t, errors.As(err, &retrievalErr), "expected *Error, got %T: %v", err, err)
	require.Equal(t, KindInvalidCredentials, retrievalErr.Kind)
	require.Equal(t, "invalid credentials", retrievalErr.Message)

	_, err = client.Check(ctx, attendance.Credential{Identifier: "broken", Secret: "secret"})
	require.Equal(t, KindParse, KindOf(err))
}

func TestCheckStatusCodes(t *testing.T) {
	client, retriever := setupServer(t)
	url := client.rest.BaseURL + "/attendance"

	res, body := postJson(t, url, CheckRequest{Username: "alice"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "missing username or password", body.Error)

	res, body = postJson(t, url, CheckRequest{Username: "rejected", Password: "x"})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, KindInvalidCredentials, body.Kind)

	res, body = postJson(t, url, CheckRequest{Username: "broken", Password: "x"})
	require.Equal(t, http.StatusBadGateway, res.StatusCode)
	require.Equal(t, KindParse, body.Kind)

	require.Equal(t, []string{"rejected", "broken"}, retriever.Calls())
}

func TestAccounts(t *testing.T) {
	client, retriever := setupServer(t)
	ctx := waitCtx(t)

	_, err := client.Report(ctx, "12345", "attendance")
	require.ErrorContains(t, err, "404")

	err = client.SaveAccount(ctx, "12345", attendance.Credential{Identifier: "alice", Secret: "secret"}, "Attendance")
	if err != nil {
		t.Fatal(err)
	}

	record, err := client.Report(ctx, "12345", "ATTENDANCE")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "alice", record.StudentId)

	_, err = client.Report(ctx, "12345", "attendence")
	require.ErrorContains(t, err, "403")
	require.ErrorContains(t, err, accounts.ErrKeywordTypo.Error())

	_, err = client.Report(ctx, "12345", "something else")
	require.ErrorContains(t, err, accounts.ErrKeywordMismatch.Error())

	err = client.SaveAccount(ctx, "12345", attendance.Credential{Identifier: "alice"}, "attendance")
	require.ErrorContains(t, err, "400")

	require.Equal(t, []string{"alice"}, retriever.Calls())
}

func TestAccountLifecycle(t *testing.T) {
	client, retriever := setupServer(t)
	ctx := waitCtx(t)

	_, err := client.GetAccount(ctx, "12345")
	require.ErrorContains(t, err, "404")

	before := time.Now().Add(-time.Second)
	err = client.SaveAccount(ctx, "12345", attendance.Credential{Identifier: "alice", Secret: "secret"}, "attendance")
	if err != nil {
		t.Fatal(err)
	}

	account, err := client.GetAccount(ctx, "12345")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "12345", account.Owner)
	require.Equal(t, "alice", account.Username)
	require.True(t, account.UpdatedAt.After(before))

	err = client.DeleteAccount(ctx, "12345", "something else")
	require.ErrorContains(t, err, "403")
	err = client.DeleteAccount(ctx, "54321", "attendance")
	require.ErrorContains(t, err, "404")

	err = client.DeleteAccount(ctx, "12345", "Attendance")
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.GetAccount(ctx, "12345")
	require.ErrorContains(t, err, "404")
	_, err = client.Report(ctx, "12345", "attendance")
	require.ErrorContains(t, err, "404")

	require.Empty(t, retriever.Calls())
}

func TestClientAccessToken(t *testing.T) {
	handler := NewHandler(NewQueue(&fakeRetriever{}), nil)
	server := httptest.NewServer(serviceutil.VerifyAccessToken("token", handler))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Status(context.Background())
	require.ErrorContains(t, err, "401")

	client.SetAccessToken("token")
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "online", status.Status)

	// account routes are not served without a store
	err = client.SaveAccount(context.Background(), "1", attendance.Credential{Identifier: "a", Secret: "b"}, "k")
	require.ErrorContains(t, err, "404")
}
