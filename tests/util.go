// Package testutil provides shared fixtures for the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/user"
	inmemstore "github.com/setulabs/shikshasetu/storage/docstore/inmem"
)

// NewConfig returns a deterministic config for tests.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:             "TEST",
		TestMode:        true,
		Build:           "test",
		AppName:         "ShikshaSetu",
		SecretKey:       "secret",
		DefaultFromName: "ShikshaSetu",
		DefaultFromAddr: "noreply@test.local",
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	return conf
}

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// NewSyncer starts a syncer over a fresh in-memory store. The empty store is
// seeded with the fixture set on Start.
func NewSyncer(t *testing.T) (*portal.Syncer, core.Store) {
	t.Helper()

	store := inmemstore.Open()
	syncer := portal.NewSyncer(store, nil, NopLogger{})
	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("syncer.Start(): %v", err)
	}
	t.Cleanup(func() {
		syncer.Stop()
		_ = store.Close()
	})
	return syncer, store
}

// CreateUser persists a user with the given roles and password "Str0ngPwd!".
func CreateUser(t *testing.T, repo user.Repository, name, uname, email string, roles []string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword("Str0ngPwd!"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}
