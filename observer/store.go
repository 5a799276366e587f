package observer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"lorebase"
)

// ObservedStore wraps a lorebase.Store with OTEL instrumentation on the
// write and search paths. Init, BulkCreate, DeleteAll, and Close delegate
// without spans.
type ObservedStore struct {
	inner lorebase.Store
	inst  *Instruments
}

var _ lorebase.Store = (*ObservedStore)(nil)

// WrapStore returns an instrumented store.
func WrapStore(inner lorebase.Store, inst *Instruments) *ObservedStore {
	return &ObservedStore{inner: inner, inst: inst}
}

func (o *ObservedStore) Init(ctx context.Context) error { return o.inner.Init(ctx) }
func (o *ObservedStore) Close() error                   { return o.inner.Close() }

func (o *ObservedStore) BulkCreate(ctx context.Context, records []lorebase.ChunkRecord) error {
	return o.inner.BulkCreate(ctx, records)
}

func (o *ObservedStore) DeleteAll(ctx context.Context, accountID string) error {
	return o.inner.DeleteAll(ctx, accountID)
}

func (o *ObservedStore) StoreDocument(ctx context.Context, doc lorebase.Document, records []lorebase.ChunkRecord) error {
	ctx, span := o.inst.Tracer.Start(ctx, "store.document", trace.WithAttributes(
		AttrAccountID.String(doc.AccountID),
		AttrDocumentID.String(doc.ID),
		AttrChunkCount.Int(len(records)),
	))
	defer span.End()
	start := time.Now()

	err := o.inner.StoreDocument(ctx, doc, records)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	statusAttr := metric.WithAttributes(attribute.String("status", status))
	o.inst.IngestDocuments.Add(ctx, 1, statusAttr)
	if err == nil {
		o.inst.IngestChunks.Add(ctx, int64(len(records)))
	}
	o.inst.StoreDuration.Record(ctx, durationMs)
	return err
}

func (o *ObservedStore) SearchTopK(ctx context.Context, accountID string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	return o.search(ctx, accountID, "", embedding, k)
}

func (o *ObservedStore) SearchTopKByRestaurant(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	return o.search(ctx, accountID, restaurant, embedding, k)
}

func (o *ObservedStore) search(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	attrs := []attribute.KeyValue{
		AttrAccountID.String(accountID),
		AttrSearchTopK.Int(k),
	}
	if restaurant != "" {
		attrs = append(attrs, AttrSearchRestaurant.String(restaurant))
	}
	ctx, span := o.inst.Tracer.Start(ctx, "store.search", trace.WithAttributes(attrs...))
	defer span.End()
	start := time.Now()

	var results []lorebase.ScoredRecord
	var err error
	if restaurant != "" {
		results, err = o.inner.SearchTopKByRestaurant(ctx, accountID, restaurant, embedding, k)
	} else {
		results, err = o.inner.SearchTopK(ctx, accountID, embedding, k)
	}

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(AttrSearchResults.Int(len(results)))
	}

	o.inst.SearchRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	o.inst.SearchDuration.Record(ctx, durationMs)
	return results, err
}
