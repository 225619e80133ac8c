package accounts

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/textutil"
	"attendance-backend/lib/timezone"
	"attendance-backend/services/accounts/db"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "embed"

	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("attendance.services.accounts")

//go:embed db/schema.sql
var Schema string

var (
	ErrNotFound        = errors.New("no account saved, set one up first")
	ErrKeywordMismatch = errors.New("keyword does not match the saved account")
	// ErrKeywordTypo is returned instead of ErrKeywordMismatch when the
	// keyword is close enough to the saved one to likely be a typo.
	ErrKeywordTypo = errors.New("keyword is close to the saved one, check for typos")
)

const typoSimilarity = 0.9

type Account struct {
	Owner      string
	Credential attendance.Credential
	// always normalized with textutil.NormalizeKeyword
	Keyword   string
	UpdatedAt time.Time
}

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

type Service struct {
	db    *sql.DB
	qry   *db.Queries
	cache *expirable.LRU[string, db.Account]
}

func NewService(database *sql.DB, opts Options) Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 2048
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return Service{
		db:    database,
		qry:   db.New(database),
		cache: expirable.NewLRU[string, db.Account](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func fromRow(row db.Account) Account {
	return Account{
		Owner: row.Owner,
		Credential: attendance.Credential{
			Identifier: row.Username,
			Secret:     row.Password,
		},
		Keyword:   row.Keyword,
		UpdatedAt: time.Unix(row.UpdatedAt, 0).In(timezone.Location),
	}
}

// Save creates or replaces the account of owner.
func (s Service) Save(ctx context.Context, owner string, credential attendance.Credential, keyword string) error {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(attribute.String("owner", owner))

	owner = strings.TrimSpace(owner)
	keyword = textutil.NormalizeKeyword(keyword)
	if owner == "" || credential.Identifier == "" || credential.Secret == "" || keyword == "" {
		err := errors.New("owner, username, password and keyword are all required")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	row := db.UpsertAccountParams{
		Owner:     owner,
		Username:  credential.Identifier,
		Password:  credential.Secret,
		Keyword:   keyword,
		UpdatedAt: timezone.Now().Unix(),
	}
	err := s.qry.UpsertAccount(ctx, row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save account")
		return err
	}
	s.cache.Add(owner, db.Account(row))

	slog.InfoContext(ctx, "saved account", "owner", owner, "username", credential.Identifier)
	return nil
}

func (s Service) Get(ctx context.Context, owner string) (Account, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("owner", owner))

	row, err := s.get(ctx, strings.TrimSpace(owner))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to get account")
		}
		return Account{}, err
	}
	return fromRow(row), nil
}

func (s Service) get(ctx context.Context, owner string) (db.Account, error) {
	cached, ok := s.cache.Get(owner)
	if ok {
		return cached, nil
	}

	row, err := s.qry.GetAccount(ctx, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Account{}, ErrNotFound
	}
	if err != nil {
		return db.Account{}, err
	}
	s.cache.Add(owner, row)
	return row, nil
}

// Lookup returns the credential saved by owner if keyword matches the
// saved keyword, case and surrounding whitespace are ignored.
func (s Service) Lookup(ctx context.Context, owner, keyword string) (attendance.Credential, error) {
	ctx, span := tracer.Start(ctx, "Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("owner", owner))

	row, err := s.get(ctx, strings.TrimSpace(owner))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to get account")
		}
		return attendance.Credential{}, err
	}

	keyword = textutil.NormalizeKeyword(keyword)
	if keyword != row.Keyword {
		similarity := matchr.JaroWinkler(keyword, row.Keyword, false)
		span.SetAttributes(attribute.Float64("keyword_similarity", similarity))
		if similarity >= typoSimilarity {
			return attendance.Credential{}, ErrKeywordTypo
		}
		return attendance.Credential{}, ErrKeywordMismatch
	}

	return attendance.Credential{
		Identifier: row.Username,
		Secret:     row.Password,
	}, nil
}

func (s Service) Delete(ctx context.Context, owner string) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.String("owner", owner))

	owner = strings.TrimSpace(owner)
	s.cache.Remove(owner)
	err := s.qry.DeleteAccount(ctx, owner)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete account")
		return err
	}
	return nil
}
