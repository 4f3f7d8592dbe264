package repository

import (
	"context"
	"strings"
	"time"

	"schallwerk/airtable"
	"schallwerk/model"
)

// TaskRepository defines the admin task operations.
type TaskRepository interface {
	ListOpen(ctx context.Context) ([]*model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	Complete(ctx context.Context, id, goID string) error
}

type airtableTaskRepository struct {
	client *airtable.Client
}

// NewAirtableTaskRepository creates a new instance of airtableTaskRepository.
func NewAirtableTaskRepository(client *airtable.Client) TaskRepository {
	return &airtableTaskRepository{client: client}
}

func decodeTask(rec *airtable.Record) (*model.Task, error) {
	eventID, err := rec.FirstString(airtable.FieldTaskEvent)
	if err != nil {
		return nil, err
	}
	kind, err := rec.String(airtable.FieldTaskKind)
	if err != nil {
		return nil, err
	}
	orderIDs, err := rec.String(airtable.FieldTaskOrders)
	if err != nil {
		return nil, err
	}
	deadline, err := rec.Time(airtable.FieldTaskDeadline)
	if err != nil {
		return nil, err
	}
	done, err := rec.Bool(airtable.FieldTaskDone)
	if err != nil {
		return nil, err
	}
	goID, err := rec.String(airtable.FieldTaskGoID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:       rec.ID,
		EventID:  eventID,
		Kind:     model.TaskKind(kind),
		Deadline: deadline,
		Done:     done,
		GoID:     goID,
	}
	if orderIDs != "" {
		task.OrderIDs = strings.Split(orderIDs, ",")
	}
	return task, nil
}

func (r *airtableTaskRepository) ListOpen(ctx context.Context) ([]*model.Task, error) {
	records, err := r.client.List(ctx, airtable.TableTasks, airtable.ListOptions{
		FilterByFormula: "NOT({Done})",
	})
	if err != nil {
		return nil, err
	}
	tasks := make([]*model.Task, 0, len(records))
	for _, rec := range records {
		task, err := decodeTask(rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *airtableTaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	rec, err := r.client.Get(ctx, airtable.TableTasks, id)
	if err != nil {
		return nil, err
	}
	return decodeTask(rec)
}

func (r *airtableTaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	rec, err := r.client.Create(ctx, airtable.TableTasks, map[string]interface{}{
		airtable.FieldTaskEvent:    []string{task.EventID},
		airtable.FieldTaskKind:     string(task.Kind),
		airtable.FieldTaskOrders:   strings.Join(task.OrderIDs, ","),
		airtable.FieldTaskDeadline: task.Deadline.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	created := *task
	created.ID = rec.ID
	return &created, nil
}

func (r *airtableTaskRepository) Complete(ctx context.Context, id, goID string) error {
	_, err := r.client.Update(ctx, airtable.TableTasks, id, map[string]interface{}{
		airtable.FieldTaskDone: true,
		airtable.FieldTaskGoID: goID,
	})
	return err
}
