package attendanced

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/services/accounts"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxBodySize = 64 << 10

type StatusResponse struct {
	Status string `json:"status"`
	Queued int    `json:"queued"`
}

type ErrorResponse struct {
	Error string    `json:"error"`
	Kind  ErrorKind `json:"kind,omitempty"`
}

type CheckRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SaveAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Keyword  string `json:"keyword"`
}

type ReportRequest struct {
	Keyword string `json:"keyword"`
}

type DeleteAccountRequest struct {
	Keyword string `json:"keyword"`
}

// AccountResponse describes a saved account without its password or
// keyword.
type AccountResponse struct {
	Owner     string    `json:"owner"`
	Username  string    `json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountStore is the part of accounts.Service the handler needs.
type AccountStore interface {
	Save(ctx context.Context, owner string, credential attendance.Credential, keyword string) error
	Get(ctx context.Context, owner string) (accounts.Account, error)
	Lookup(ctx context.Context, owner, keyword string) (attendance.Credential, error)
	Delete(ctx context.Context, owner string) error
}

type handler struct {
	queue    *Queue
	accounts AccountStore
}

// NewHandler serves the attendance api on top of queue. the /accounts
// routes are only registered when store is not nil.
func NewHandler(queue *Queue, store AccountStore) http.Handler {
	h := handler{queue: queue, accounts: store}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.status)
	mux.HandleFunc("POST /attendance", h.check)
	if store != nil {
		mux.HandleFunc("GET /accounts/{owner}", h.getAccount)
		mux.HandleFunc("PUT /accounts/{owner}", h.saveAccount)
		mux.HandleFunc("DELETE /accounts/{owner}", h.deleteAccount)
		mux.HandleFunc("POST /accounts/{owner}/report", h.report)
	}
	return mux
}

func writeJson(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.WarnContext(ctx, "failed to write response", "err", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string, kind ErrorKind) {
	writeJson(ctx, w, status, ErrorResponse{Error: message, Kind: kind})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(out)
}

func statusOf(kind ErrorKind) int {
	switch kind {
	case KindInvalidCredentials, KindAuthenticationFailed:
		return http.StatusUnauthorized
	case KindFetch, KindParse:
		return http.StatusBadGateway
	case KindQueue:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h handler) status(w http.ResponseWriter, r *http.Request) {
	writeJson(r.Context(), w, http.StatusOK, StatusResponse{
		Status: "online",
		Queued: h.queue.Len(),
	})
}

func (h handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /attendance")
	defer span.End()

	var req CheckRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(ctx, w, http.StatusBadRequest, "missing username or password", "")
		return
	}
	span.SetAttributes(attribute.String("username", req.Username))

	h.submitAndRespond(ctx, w, attendance.Credential{
		Identifier: strings.TrimSpace(req.Username),
		Secret:     req.Password,
	})
}

func (h handler) submitAndRespond(ctx context.Context, w http.ResponseWriter, credential attendance.Credential) {
	handle := h.queue.Submit(ctx, credential)
	record, err := handle.Wait(ctx)
	if ctx.Err() != nil {
		// the client is gone, the request still runs in its turn
		slog.DebugContext(ctx, "client stopped waiting for attendance", "request_id", handle.Id)
		return
	}
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = KindQueue
		}
		writeError(ctx, w, statusOf(kind), err.Error(), kind)
		return
	}
	writeJson(ctx, w, http.StatusOK, record)
}

func (h handler) saveAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "PUT /accounts/{owner}")
	defer span.End()

	owner := r.PathValue("owner")
	span.SetAttributes(attribute.String("owner", owner))

	var req SaveAccountRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.Keyword) == "" {
		writeError(ctx, w, http.StatusBadRequest, "missing username, password or keyword", "")
		return
	}

	err = h.accounts.Save(ctx, owner, attendance.Credential{
		Identifier: strings.TrimSpace(req.Username),
		Secret:     req.Password,
	}, req.Keyword)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save account")
		slog.ErrorContext(ctx, "failed to save account", "owner", owner, "err", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to save account", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h handler) report(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /accounts/{owner}/report")
	defer span.End()

	owner := r.PathValue("owner")
	span.SetAttributes(attribute.String("owner", owner))

	var req ReportRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	credential, ok := h.lookup(ctx, w, owner, req.Keyword)
	if !ok {
		return
	}
	h.submitAndRespond(ctx, w, credential)
}

// lookup writes the error response itself when the account cannot be
// used, ok reports whether the caller should continue.
func (h handler) lookup(ctx context.Context, w http.ResponseWriter, owner, keyword string) (attendance.Credential, bool) {
	span := trace.SpanFromContext(ctx)

	credential, err := h.accounts.Lookup(ctx, owner, keyword)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, err.Error(), "")
		return attendance.Credential{}, false
	case errors.Is(err, accounts.ErrKeywordMismatch), errors.Is(err, accounts.ErrKeywordTypo):
		writeError(ctx, w, http.StatusForbidden, err.Error(), "")
		return attendance.Credential{}, false
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to look up account")
		slog.ErrorContext(ctx, "failed to look up account", "owner", owner, "err", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to look up account", "")
		return attendance.Credential{}, false
	}
	return credential, true
}

func (h handler) getAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "GET /accounts/{owner}")
	defer span.End()

	owner := r.PathValue("owner")
	span.SetAttributes(attribute.String("owner", owner))

	account, err := h.accounts.Get(ctx, owner)
	if errors.Is(err, accounts.ErrNotFound) {
		writeError(ctx, w, http.StatusNotFound, err.Error(), "")
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get account")
		slog.ErrorContext(ctx, "failed to get account", "owner", owner, "err", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to get account", "")
		return
	}

	writeJson(ctx, w, http.StatusOK, AccountResponse{
		Owner:     account.Owner,
		Username:  account.Credential.Identifier,
		UpdatedAt: account.UpdatedAt,
	})
}

// deleteAccount removes the account of owner, the saved keyword must be
// given so one owner cannot drop another's account by guessing the path.
func (h handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "DELETE /accounts/{owner}")
	defer span.End()

	owner := r.PathValue("owner")
	span.SetAttributes(attribute.String("owner", owner))

	var req DeleteAccountRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	_, ok := h.lookup(ctx, w, owner, req.Keyword)
	if !ok {
		return
	}

	err = h.accounts.Delete(ctx, owner)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete account")
		slog.ErrorContext(ctx, "failed to delete account", "owner", owner, "err", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to delete account", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
