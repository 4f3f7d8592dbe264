package repository

import (
	"context"
	"fmt"

	"schallwerk/airtable"
	"schallwerk/model"
)

// AccountRepository looks up internal logins (admin, staff, engineer).
type AccountRepository interface {
	GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
}

// ParentRepository defines the parent registration operations.
type ParentRepository interface {
	Create(ctx context.Context, parent *model.Parent) (*model.Parent, error)
	GetByEmailAndEvent(ctx context.Context, email, eventID string) (*model.Parent, error)
}

type airtableAccountRepository struct {
	client *airtable.Client
}

// NewAirtableAccountRepository creates a new instance of airtableAccountRepository.
func NewAirtableAccountRepository(client *airtable.Client) AccountRepository {
	return &airtableAccountRepository{client: client}
}

func decodeAccount(rec *airtable.Record) (*model.Account, error) {
	email, err := rec.String(airtable.FieldAccountEmail)
	if err != nil {
		return nil, err
	}
	name, err := rec.String(airtable.FieldAccountName)
	if err != nil {
		return nil, err
	}
	role, err := rec.String(airtable.FieldAccountRole)
	if err != nil {
		return nil, err
	}
	hash, err := rec.String(airtable.FieldAccountPasswordHash)
	if err != nil {
		return nil, err
	}
	return &model.Account{
		ID:           rec.ID,
		Email:        email,
		Name:         name,
		Role:         model.Role(role),
		PasswordHash: hash,
	}, nil
}

func (r *airtableAccountRepository) GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.Account, error) {
	formula := fmt.Sprintf("AND(%s, %s)",
		airtable.EqualsFormula(airtable.FieldAccountEmail, email),
		airtable.EqualsFormula(airtable.FieldAccountRole, string(role)))
	rec, err := r.client.First(ctx, airtable.TableAccounts, formula)
	if err != nil {
		return nil, err
	}
	return decodeAccount(rec)
}

func (r *airtableAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	rec, err := r.client.Get(ctx, airtable.TableAccounts, id)
	if err != nil {
		return nil, err
	}
	return decodeAccount(rec)
}

type airtableParentRepository struct {
	client *airtable.Client
}

// NewAirtableParentRepository creates a new instance of airtableParentRepository.
func NewAirtableParentRepository(client *airtable.Client) ParentRepository {
	return &airtableParentRepository{client: client}
}

func (r *airtableParentRepository) Create(ctx context.Context, parent *model.Parent) (*model.Parent, error) {
	rec, err := r.client.Create(ctx, airtable.TableParents, map[string]interface{}{
		airtable.FieldParentEvent: []string{parent.EventID},
		airtable.FieldParentClass: []string{parent.ClassID},
		airtable.FieldParentName:  parent.Name,
		airtable.FieldParentEmail: parent.Email,
	})
	if err != nil {
		return nil, err
	}
	created := *parent
	created.ID = rec.ID
	return &created, nil
}

func (r *airtableParentRepository) GetByEmailAndEvent(ctx context.Context, email, eventID string) (*model.Parent, error) {
	formula := fmt.Sprintf("AND(%s, %s)",
		airtable.EqualsFormula(airtable.FieldParentEmail, email),
		airtable.LinkedToFormula(airtable.FieldParentEvent, eventID))
	rec, err := r.client.First(ctx, airtable.TableParents, formula)
	if err != nil {
		return nil, err
	}
	name, err := rec.String(airtable.FieldParentName)
	if err != nil {
		return nil, err
	}
	classID, err := rec.FirstString(airtable.FieldParentClass)
	if err != nil {
		return nil, err
	}
	return &model.Parent{
		ID:      rec.ID,
		EventID: eventID,
		ClassID: classID,
		Name:    name,
		Email:   email,
	}, nil
}
