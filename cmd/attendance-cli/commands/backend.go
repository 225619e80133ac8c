package commands

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/browser"
	"attendance-backend/services/accounts"
	attendanced "attendance-backend/services/attendance"
	"context"
	"database/sql"
)

// backend is what the commands run against, either an attendance-server
// or the same services started in-process.
type backend interface {
	Check(ctx context.Context, credential attendance.Credential) (attendance.Record, error)
	SaveAccount(ctx context.Context, owner string, credential attendance.Credential, keyword string) error
	Report(ctx context.Context, owner, keyword string) (attendance.Record, error)
	GetAccount(ctx context.Context, owner string) (attendanced.AccountResponse, error)
	DeleteAccount(ctx context.Context, owner, keyword string) error
	Close() error
}

type remoteBackend struct {
	attendanced.Client
}

func (remoteBackend) Close() error {
	return nil
}

type localBackend struct {
	queue  *attendanced.Queue
	cancel context.CancelFunc
	cfg    Config
	db     *sql.DB
}

func (b *localBackend) Check(ctx context.Context, credential attendance.Credential) (attendance.Record, error) {
	return b.queue.Submit(ctx, credential).Wait(ctx)
}

func (b *localBackend) accounts() (accounts.Service, error) {
	if b.db == nil {
		database, err := b.cfg.Accounts.OpenDB(accounts.Schema)
		if err != nil {
			return accounts.Service{}, err
		}
		b.db = database
	}
	return accounts.NewService(b.db, accounts.Options{}), nil
}

func (b *localBackend) SaveAccount(ctx context.Context, owner string, credential attendance.Credential, keyword string) error {
	store, err := b.accounts()
	if err != nil {
		return err
	}
	return store.Save(ctx, owner, credential, keyword)
}

func (b *localBackend) Report(ctx context.Context, owner, keyword string) (attendance.Record, error) {
	store, err := b.accounts()
	if err != nil {
		return attendance.Record{}, err
	}
	credential, err := store.Lookup(ctx, owner, keyword)
	if err != nil {
		return attendance.Record{}, err
	}
	return b.Check(ctx, credential)
}

func (b *localBackend) GetAccount(ctx context.Context, owner string) (attendanced.AccountResponse, error) {
	store, err := b.accounts()
	if err != nil {
		return attendanced.AccountResponse{}, err
	}
	account, err := store.Get(ctx, owner)
	if err != nil {
		return attendanced.AccountResponse{}, err
	}
	return attendanced.AccountResponse{
		Owner:     account.Owner,
		Username:  account.Credential.Identifier,
		UpdatedAt: account.UpdatedAt,
	}, nil
}

func (b *localBackend) DeleteAccount(ctx context.Context, owner, keyword string) error {
	store, err := b.accounts()
	if err != nil {
		return err
	}
	_, err = store.Lookup(ctx, owner, keyword)
	if err != nil {
		return err
	}
	return store.Delete(ctx, owner)
}

func (b *localBackend) Close() error {
	b.cancel()
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func newBackend(ctx context.Context) (backend, error) {
	if serverUrl != "" {
		client := attendanced.NewClient(serverUrl)
		client.SetAccessToken(accessToken)
		return remoteBackend{Client: client}, nil
	}

	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	service := attendanced.NewService(
		browser.NewChromeLauncher(cfg.Browser),
		attendanced.Options{Session: cfg.Portal.sessionOptions()},
	)
	queue := attendanced.NewQueue(service)
	queueCtx, cancel := context.WithCancel(ctx)
	go queue.Run(queueCtx)

	return &localBackend{
		queue:  queue,
		cancel: cancel,
		cfg:    cfg,
	}, nil
}
