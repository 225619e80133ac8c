package webpros

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/browser"
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseUrl           = "https://webprosindia.com/vignanit"
	DefaultLoginTimeout      = 10 * time.Second
	DefaultNavigationTimeout = 30 * time.Second

	loginPath    = "/Default.aspx"
	registerPath = "/Academics/studentacadamicregister.aspx?scrid=2"

	usernameInput = "#txtId2"
	passwordInput = "#txtPwd2"
	submitButton  = "#imgBtn2"
	loginError    = "#lblError2"
	// only rendered once the user is logged in
	landmark = "#divscreens"
)

// the portal encrypts the login form client side, these are its own
// functions and must run right before submitting.
var preSubmitScripts = []string{
	"encryptJSText(2)",
	"setValue(2)",
}

type SessionOptions struct {
	BaseUrl string
	// upper bound on waiting for the portal to settle after submitting the login form
	LoginTimeout time.Duration
	// upper bound on waiting for any other page to settle
	NavigationTimeout time.Duration
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	o.BaseUrl = strings.TrimRight(o.BaseUrl, "/")
	if o.LoginTimeout <= 0 {
		o.LoginTimeout = DefaultLoginTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	return o
}

// Session drives one logged in visit to the portal. it does not own the
// page, whoever created the page closes it.
type Session struct {
	page browser.Page
	opts SessionOptions
}

func NewSession(page browser.Page, opts SessionOptions) Session {
	return Session{
		page: page,
		opts: opts.withDefaults(),
	}
}

func (s Session) Login(ctx context.Context, credential attendance.Credential) error {
	ctx, span := tracer.Start(ctx, "Session:Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", credential.Identifier))

	err := s.login(ctx, credential)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s Session) login(ctx context.Context, credential attendance.Credential) error {
	err := s.page.Goto(ctx, s.opts.BaseUrl+loginPath)
	if err != nil {
		return wrapAuthError(err)
	}
	err = s.page.WaitForNetworkIdle(ctx, s.opts.NavigationTimeout)
	if err != nil {
		return wrapAuthError(err)
	}

	err = s.page.Fill(ctx, usernameInput, credential.Identifier)
	if err != nil {
		return wrapAuthError(err)
	}
	err = s.page.Fill(ctx, passwordInput, credential.Secret)
	if err != nil {
		return wrapAuthError(err)
	}
	for _, script := range preSubmitScripts {
		err = s.page.Evaluate(ctx, script)
		if err != nil {
			return wrapAuthError(err)
		}
	}
	err = s.page.Click(ctx, submitButton)
	if err != nil {
		return wrapAuthError(err)
	}
	err = s.page.WaitForNetworkIdle(ctx, s.opts.LoginTimeout)
	if err != nil {
		return wrapAuthError(err)
	}

	errorElement, err := s.page.QuerySelector(ctx, loginError)
	if err != nil {
		return wrapAuthError(err)
	}
	if errorElement != nil && strings.TrimSpace(errorElement.InnerText) != "" {
		slog.WarnContext(
			ctx, "portal rejected login",
			"username", credential.Identifier,
			"reason", strings.TrimSpace(errorElement.InnerText),
		)
		return &AuthError{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
	}

	landmarkElement, err := s.page.QuerySelector(ctx, landmark)
	if err != nil {
		return wrapAuthError(err)
	}
	if landmarkElement == nil {
		slog.ErrorContext(ctx, "login failed, post-login page not reached", "username", credential.Identifier, "landmark", landmark)
		return &AuthError{Message: ErrAuthenticationFailed.Error(), Err: ErrAuthenticationFailed}
	}

	return nil
}

func wrapAuthError(err error) error {
	return &AuthError{Message: err.Error(), Err: err}
}

// FetchReportHtml returns the rendered academic register, the session must
// be logged in.
func (s Session) FetchReportHtml(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Session:FetchReportHtml")
	defer span.End()

	html, err := s.fetchReportHtml(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get attendance data", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch attendance register")
		return "", &FetchError{Message: err.Error(), Err: err}
	}
	span.SetAttributes(attribute.Int("html_length", len(html)))
	return html, nil
}

func (s Session) fetchReportHtml(ctx context.Context) (string, error) {
	err := s.page.Goto(ctx, s.opts.BaseUrl+registerPath)
	if err != nil {
		return "", err
	}
	err = s.page.WaitForNetworkIdle(ctx, s.opts.NavigationTimeout)
	if err != nil {
		return "", err
	}
	return s.page.Content(ctx)
}
