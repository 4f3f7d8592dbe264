package repository

import (
	"context"

	"schallwerk/airtable"
	"schallwerk/model"
)

// ClassRepository defines the class roster operations.
type ClassRepository interface {
	GetByID(ctx context.Context, id string) (*model.Class, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Class, error)
	Create(ctx context.Context, class *model.Class) (*model.Class, error)
}

// GroupRepository defines the class-group operations.
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) (*model.Group, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Group, error)
}

type airtableClassRepository struct {
	client *airtable.Client
}

// NewAirtableClassRepository creates a new instance of airtableClassRepository.
func NewAirtableClassRepository(client *airtable.Client) ClassRepository {
	return &airtableClassRepository{client: client}
}

func decodeClass(rec *airtable.Record) (*model.Class, error) {
	eventID, err := rec.FirstString(airtable.FieldClassEvent)
	if err != nil {
		return nil, err
	}
	name, err := rec.String(airtable.FieldClassName)
	if err != nil {
		return nil, err
	}
	expected, err := rec.Int(airtable.FieldClassExpectedSongs)
	if err != nil {
		return nil, err
	}
	return &model.Class{
		ID:            rec.ID,
		EventID:       eventID,
		Name:          name,
		ExpectedSongs: expected,
	}, nil
}

func (r *airtableClassRepository) GetByID(ctx context.Context, id string) (*model.Class, error) {
	rec, err := r.client.Get(ctx, airtable.TableClasses, id)
	if err != nil {
		return nil, err
	}
	return decodeClass(rec)
}

func (r *airtableClassRepository) ListByEvent(ctx context.Context, eventID string) ([]*model.Class, error) {
	records, err := r.client.List(ctx, airtable.TableClasses, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldClassEvent, eventID),
	})
	if err != nil {
		return nil, err
	}
	classes := make([]*model.Class, 0, len(records))
	for _, rec := range records {
		class, err := decodeClass(rec)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func (r *airtableClassRepository) Create(ctx context.Context, class *model.Class) (*model.Class, error) {
	rec, err := r.client.Create(ctx, airtable.TableClasses, map[string]interface{}{
		airtable.FieldClassEvent:         []string{class.EventID},
		airtable.FieldClassName:          class.Name,
		airtable.FieldClassExpectedSongs: class.ExpectedSongs,
	})
	if err != nil {
		return nil, err
	}
	created := *class
	created.ID = rec.ID
	return &created, nil
}

type airtableGroupRepository struct {
	client *airtable.Client
}

// NewAirtableGroupRepository creates a new instance of airtableGroupRepository.
func NewAirtableGroupRepository(client *airtable.Client) GroupRepository {
	return &airtableGroupRepository{client: client}
}

func (r *airtableGroupRepository) Create(ctx context.Context, group *model.Group) (*model.Group, error) {
	rec, err := r.client.Create(ctx, airtable.TableGroups, map[string]interface{}{
		airtable.FieldGroupEvent:   []string{group.EventID},
		airtable.FieldGroupName:    group.Name,
		airtable.FieldGroupMembers: group.MemberClassIDs,
	})
	if err != nil {
		return nil, err
	}
	created := *group
	created.ID = rec.ID
	return &created, nil
}

func (r *airtableGroupRepository) ListByEvent(ctx context.Context, eventID string) ([]*model.Group, error) {
	records, err := r.client.List(ctx, airtable.TableGroups, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldGroupEvent, eventID),
	})
	if err != nil {
		return nil, err
	}
	groups := make([]*model.Group, 0, len(records))
	for _, rec := range records {
		name, err := rec.String(airtable.FieldGroupName)
		if err != nil {
			return nil, err
		}
		members, err := rec.Strings(airtable.FieldGroupMembers)
		if err != nil {
			return nil, err
		}
		groups = append(groups, &model.Group{
			ID:             rec.ID,
			EventID:        eventID,
			Name:           name,
			MemberClassIDs: members,
		})
	}
	return groups, nil
}
