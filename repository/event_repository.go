package repository

import (
	"context"

	"schallwerk/airtable"
	"schallwerk/model"
)

// EventRepository defines the event data operations.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetBySimplybookID(ctx context.Context, simplybookID string) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	ListForStaff(ctx context.Context, staffID string) ([]*model.Event, error)
	ListForEngineer(ctx context.Context, engineerID string) ([]*model.Event, error)
	Create(ctx context.Context, event *model.Event, teacherCode string) (*model.Event, error)
	UpdatePipelineStage(ctx context.Context, id string, stage model.PipelineStage) error
	UpdatePortalStatus(ctx context.Context, id string, status model.PortalStatus) error
	SetPublished(ctx context.Context, id string, published bool) error
	GetByTeacherCode(ctx context.Context, code string) (*model.Event, error)
}

// airtableEventRepository implements EventRepository on the Events table.
type airtableEventRepository struct {
	client *airtable.Client
}

// NewAirtableEventRepository creates a new instance of airtableEventRepository.
func NewAirtableEventRepository(client *airtable.Client) EventRepository {
	return &airtableEventRepository{client: client}
}

func decodeEvent(rec *airtable.Record) (*model.Event, error) {
	school, err := rec.String(airtable.FieldEventSchool)
	if err != nil {
		return nil, err
	}
	date, err := rec.Time(airtable.FieldEventDate)
	if err != nil {
		return nil, err
	}
	eventType, err := rec.String(airtable.FieldEventType)
	if err != nil {
		return nil, err
	}
	simplybookID, err := rec.String(airtable.FieldEventSimplybookID)
	if err != nil {
		return nil, err
	}
	staff, err := rec.Strings(airtable.FieldEventStaff)
	if err != nil {
		return nil, err
	}
	engineers, err := rec.Strings(airtable.FieldEventEngineers)
	if err != nil {
		return nil, err
	}
	stage, err := rec.String(airtable.FieldEventStage)
	if err != nil {
		return nil, err
	}
	if stage == "" {
		stage = string(model.StagePending)
	}
	portalStatus, err := rec.String(airtable.FieldEventPortalStatus)
	if err != nil {
		return nil, err
	}
	if portalStatus == "" {
		portalStatus = string(model.PortalPendingSetup)
	}
	status, err := rec.String(airtable.FieldEventStatus)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = string(model.EventUpcoming)
	}
	published, err := rec.Bool(airtable.FieldEventPublished)
	if err != nil {
		return nil, err
	}

	return &model.Event{
		ID:            rec.ID,
		SchoolName:    school,
		Date:          date,
		Type:          eventType,
		SimplybookID:  simplybookID,
		StaffIDs:      staff,
		EngineerIDs:   engineers,
		PipelineStage: model.PipelineStage(stage),
		PortalStatus:  model.PortalStatus(portalStatus),
		Status:        model.EventStatus(status),
		Published:     published,
	}, nil
}

func decodeEvents(records []*airtable.Record) ([]*model.Event, error) {
	events := make([]*model.Event, 0, len(records))
	for _, rec := range records {
		event, err := decodeEvent(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *airtableEventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	rec, err := r.client.Get(ctx, airtable.TableEvents, id)
	if err != nil {
		return nil, err
	}
	return decodeEvent(rec)
}

func (r *airtableEventRepository) GetBySimplybookID(ctx context.Context, simplybookID string) (*model.Event, error) {
	rec, err := r.client.First(ctx, airtable.TableEvents,
		airtable.EqualsFormula(airtable.FieldEventSimplybookID, simplybookID))
	if err != nil {
		return nil, err
	}
	return decodeEvent(rec)
}

func (r *airtableEventRepository) List(ctx context.Context) ([]*model.Event, error) {
	records, err := r.client.List(ctx, airtable.TableEvents, airtable.ListOptions{})
	if err != nil {
		return nil, err
	}
	return decodeEvents(records)
}

func (r *airtableEventRepository) ListForStaff(ctx context.Context, staffID string) ([]*model.Event, error) {
	records, err := r.client.List(ctx, airtable.TableEvents, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldEventStaff, staffID),
	})
	if err != nil {
		return nil, err
	}
	return decodeEvents(records)
}

func (r *airtableEventRepository) ListForEngineer(ctx context.Context, engineerID string) ([]*model.Event, error) {
	records, err := r.client.List(ctx, airtable.TableEvents, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldEventEngineers, engineerID),
	})
	if err != nil {
		return nil, err
	}
	return decodeEvents(records)
}

func (r *airtableEventRepository) Create(ctx context.Context, event *model.Event, teacherCode string) (*model.Event, error) {
	fields := map[string]interface{}{
		airtable.FieldEventSchool:       event.SchoolName,
		airtable.FieldEventDate:         event.Date.Format("2006-01-02"),
		airtable.FieldEventType:         event.Type,
		airtable.FieldEventSimplybookID: event.SimplybookID,
		airtable.FieldEventStage:        string(model.StagePending),
		airtable.FieldEventPortalStatus: string(model.PortalPendingSetup),
		airtable.FieldEventStatus:       string(model.EventUpcoming),
		airtable.FieldEventTeacherCode:  teacherCode,
	}
	rec, err := r.client.Create(ctx, airtable.TableEvents, fields)
	if err != nil {
		return nil, err
	}
	created := *event
	created.ID = rec.ID
	created.PipelineStage = model.StagePending
	created.PortalStatus = model.PortalPendingSetup
	created.Status = model.EventUpcoming
	return &created, nil
}

func (r *airtableEventRepository) UpdatePipelineStage(ctx context.Context, id string, stage model.PipelineStage) error {
	_, err := r.client.Update(ctx, airtable.TableEvents, id, map[string]interface{}{
		airtable.FieldEventStage: string(stage),
	})
	return err
}

func (r *airtableEventRepository) UpdatePortalStatus(ctx context.Context, id string, status model.PortalStatus) error {
	_, err := r.client.Update(ctx, airtable.TableEvents, id, map[string]interface{}{
		airtable.FieldEventPortalStatus: string(status),
	})
	return err
}

func (r *airtableEventRepository) SetPublished(ctx context.Context, id string, published bool) error {
	_, err := r.client.Update(ctx, airtable.TableEvents, id, map[string]interface{}{
		airtable.FieldEventPublished: published,
	})
	return err
}

func (r *airtableEventRepository) GetByTeacherCode(ctx context.Context, code string) (*model.Event, error) {
	rec, err := r.client.First(ctx, airtable.TableEvents,
		airtable.EqualsFormula(airtable.FieldEventTeacherCode, code))
	if err != nil {
		return nil, err
	}
	return decodeEvent(rec)
}
