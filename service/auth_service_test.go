package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schallwerk/apperr"
	"schallwerk/core/auth"
	"schallwerk/model"
)

func TestLoginAccount(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	accounts := &fakeAccountRepo{accounts: []*model.Account{
		{ID: "acc1", Email: "staff@example.com", Role: model.RoleStaff, PasswordHash: hash},
	}}
	svc := NewAuthService(accounts, newFakeEventRepo())
	ctx := context.Background()

	account, err := svc.LoginAccount(ctx, model.RoleStaff, " Staff@Example.COM ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "acc1", account.ID)

	// Wrong password and unknown email yield the same message.
	_, badPass := svc.LoginAccount(ctx, model.RoleStaff, "staff@example.com", "wrong")
	_, badMail := svc.LoginAccount(ctx, model.RoleStaff, "ghost@example.com", "s3cret")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(badPass))
	assert.Equal(t, apperr.Message(badPass), apperr.Message(badMail))

	// A staff login cannot be used under another role.
	_, err = svc.LoginAccount(ctx, model.RoleAdmin, "staff@example.com", "s3cret")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.LoginAccount(ctx, model.RoleTeacher, "staff@example.com", "s3cret")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestLoginTeacher(t *testing.T) {
	events := newFakeEventRepo()
	ctx := context.Background()
	event, err := events.Create(ctx, &model.Event{SchoolName: "GS Nord"}, "code-1234")
	require.NoError(t, err)

	svc := NewAuthService(&fakeAccountRepo{}, events)

	got, err := svc.LoginTeacher(ctx, " code-1234 ")
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	_, err = svc.LoginTeacher(ctx, "wrong")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.LoginTeacher(ctx, "")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}
