package attendanced

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/telemetry"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a server created with NewHandler.
type Client struct {
	rest *resty.Client
}

func NewClient(baseUrl string) Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseUrl, "/"))
	client.SetHeader("content-type", "application/json")
	// a request can wait behind every retrieval queued before it
	client.SetTimeout(5 * time.Minute)
	telemetry.InstrumentResty(client, "attendance.services.attendance.client")

	return Client{rest: client}
}

// SetAccessToken sends token as a bearer token with every request, for
// servers started with an access token.
func (c Client) SetAccessToken(token string) {
	if token != "" {
		c.rest.SetAuthToken(token)
	}
}

func responseError(res *resty.Response) error {
	body, ok := res.Error().(*ErrorResponse)
	if !ok || body.Error == "" {
		return fmt.Errorf("unexpected response %s: %s", res.Status(), res.String())
	}
	if body.Kind != "" {
		return &Error{Kind: body.Kind, Message: body.Error}
	}
	return fmt.Errorf("%s: %s", res.Status(), body.Error)
}

func (c Client) Status(ctx context.Context) (StatusResponse, error) {
	var status StatusResponse
	res, err := c.rest.R().
		SetContext(ctx).
		SetResult(&status).
		SetError(&ErrorResponse{}).
		Get("/")
	if err != nil {
		return StatusResponse{}, err
	}
	if res.IsError() {
		return StatusResponse{}, responseError(res)
	}
	return status, nil
}

// Check retrieves the attendance of credential, failures of the retrieval
// itself are returned as *Error.
func (c Client) Check(ctx context.Context, credential attendance.Credential) (attendance.Record, error) {
	var record attendance.Record
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(CheckRequest{
			Username: credential.Identifier,
			Password: credential.Secret,
		}).
		SetResult(&record).
		SetError(&ErrorResponse{}).
		Post("/attendance")
	if err != nil {
		return attendance.Record{}, err
	}
	if res.IsError() {
		return attendance.Record{}, responseError(res)
	}
	return record, nil
}

func (c Client) SaveAccount(ctx context.Context, owner string, credential attendance.Credential, keyword string) error {
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(SaveAccountRequest{
			Username: credential.Identifier,
			Password: credential.Secret,
			Keyword:  keyword,
		}).
		SetError(&ErrorResponse{}).
		Put("/accounts/" + url.PathEscape(owner))
	if err != nil {
		return err
	}
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

// Report retrieves the attendance of the account saved by owner.
func (c Client) Report(ctx context.Context, owner, keyword string) (attendance.Record, error) {
	var record attendance.Record
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(ReportRequest{Keyword: keyword}).
		SetResult(&record).
		SetError(&ErrorResponse{}).
		Post(fmt.Sprintf("/accounts/%s/report", url.PathEscape(owner)))
	if err != nil {
		return attendance.Record{}, err
	}
	if res.IsError() {
		return attendance.Record{}, responseError(res)
	}
	return record, nil
}

// GetAccount describes the account saved by owner.
func (c Client) GetAccount(ctx context.Context, owner string) (AccountResponse, error) {
	var account AccountResponse
	res, err := c.rest.R().
		SetContext(ctx).
		SetResult(&account).
		SetError(&ErrorResponse{}).
		Get("/accounts/" + url.PathEscape(owner))
	if err != nil {
		return AccountResponse{}, err
	}
	if res.IsError() {
		return AccountResponse{}, responseError(res)
	}
	return account, nil
}

func (c Client) DeleteAccount(ctx context.Context, owner, keyword string) error {
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(DeleteAccountRequest{Keyword: keyword}).
		SetError(&ErrorResponse{}).
		Delete("/accounts/" + url.PathEscape(owner))
	if err != nil {
		return err
	}
	if res.IsError() {
		return responseError(res)
	}
	return nil
}
