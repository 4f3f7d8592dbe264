package repository

import (
	"context"
	"encoding/json"
	"time"

	"schallwerk/airtable"
	"schallwerk/apperr"
	"schallwerk/model"
)

// OrderRepository defines the clothing-order operations. Size quantities are
// aggregated from the OrderItems child table; the upsert keeps a single
// order record per event.
type OrderRepository interface {
	AggregateSizes(ctx context.Context, eventID string) (map[string]int, error)
	GetByEvent(ctx context.Context, eventID string) (*model.ClothingOrder, error)
	Upsert(ctx context.Context, order *model.ClothingOrder) (*model.ClothingOrder, error)
	SetGoID(ctx context.Context, orderID, goID string) error
}

type airtableOrderRepository struct {
	client *airtable.Client
}

// NewAirtableOrderRepository creates a new instance of airtableOrderRepository.
func NewAirtableOrderRepository(client *airtable.Client) OrderRepository {
	return &airtableOrderRepository{client: client}
}

// AggregateSizes sums per-size quantities over the event's order items.
func (r *airtableOrderRepository) AggregateSizes(ctx context.Context, eventID string) (map[string]int, error) {
	records, err := r.client.List(ctx, airtable.TableOrderItems, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldItemEvent, eventID),
	})
	if err != nil {
		return nil, err
	}

	sizes := make(map[string]int)
	for _, rec := range records {
		size, err := rec.String(airtable.FieldItemSize)
		if err != nil {
			return nil, err
		}
		qty, err := rec.Int(airtable.FieldItemQuantity)
		if err != nil {
			return nil, err
		}
		if size == "" || qty <= 0 {
			continue
		}
		sizes[size] += qty
	}
	return sizes, nil
}

func decodeOrder(rec *airtable.Record) (*model.ClothingOrder, error) {
	eventID, err := rec.FirstString(airtable.FieldOrderEvent)
	if err != nil {
		return nil, err
	}
	sizesJSON, err := rec.String(airtable.FieldOrderSizes)
	if err != nil {
		return nil, err
	}
	sizes := map[string]int{}
	if sizesJSON != "" {
		if err := json.Unmarshal([]byte(sizesJSON), &sizes); err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "corrupt sizes payload on order record", err)
		}
	}
	total, err := rec.Int(airtable.FieldOrderTotal)
	if err != nil {
		return nil, err
	}
	goID, err := rec.String(airtable.FieldOrderGoID)
	if err != nil {
		return nil, err
	}
	updatedAt, err := rec.Time(airtable.FieldOrderUpdatedAt)
	if err != nil {
		return nil, err
	}

	return &model.ClothingOrder{
		ID:        rec.ID,
		EventID:   eventID,
		Sizes:     sizes,
		Total:     total,
		GoID:      goID,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *airtableOrderRepository) GetByEvent(ctx context.Context, eventID string) (*model.ClothingOrder, error) {
	rec, err := r.client.First(ctx, airtable.TableOrders,
		airtable.LinkedToFormula(airtable.FieldOrderEvent, eventID))
	if err != nil {
		return nil, err
	}
	return decodeOrder(rec)
}

// Upsert writes the aggregated order, creating the record on first write and
// patching it afterwards. Two concurrent upserts are not coordinated; the
// last write wins in Airtable.
func (r *airtableOrderRepository) Upsert(ctx context.Context, order *model.ClothingOrder) (*model.ClothingOrder, error) {
	sizesJSON, err := json.Marshal(order.Sizes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to encode sizes", err)
	}
	total := 0
	for _, qty := range order.Sizes {
		total += qty
	}
	fields := map[string]interface{}{
		airtable.FieldOrderSizes:     string(sizesJSON),
		airtable.FieldOrderTotal:     total,
		airtable.FieldOrderUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	existing, err := r.GetByEvent(ctx, order.EventID)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return nil, err
		}
		fields[airtable.FieldOrderEvent] = []string{order.EventID}
		rec, err := r.client.Create(ctx, airtable.TableOrders, fields)
		if err != nil {
			return nil, err
		}
		created := *order
		created.ID = rec.ID
		created.Total = total
		return &created, nil
	}

	if _, err := r.client.Update(ctx, airtable.TableOrders, existing.ID, fields); err != nil {
		return nil, err
	}
	updated := *order
	updated.ID = existing.ID
	updated.Total = total
	updated.GoID = existing.GoID
	return &updated, nil
}

func (r *airtableOrderRepository) SetGoID(ctx context.Context, orderID, goID string) error {
	_, err := r.client.Update(ctx, airtable.TableOrders, orderID, map[string]interface{}{
		airtable.FieldOrderGoID: goID,
	})
	return err
}
