package remote

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/and161185/barkcard/internal/api"
	"github.com/and161185/barkcard/internal/convert"
	"github.com/and161185/barkcard/internal/model"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Documents is the client document store.
type Documents struct {
	backend *api.BackendClient
	log     *zap.Logger
}

// NewDocuments wraps the backend client.
func NewDocuments(backend *api.BackendClient, log *zap.Logger) *Documents {
	if log == nil {
		log = zap.NewNop()
	}
	return &Documents{backend: backend, log: log}
}

// GetOnce reads a snapshot.
func (d *Documents) GetOnce(ctx context.Context, collection, id string) (model.Document, error) {
	resp, err := d.backend.GetDocument(ctx, convert.RefToStruct(collection, id))
	if err != nil {
		return model.Document{}, fromStatus(err)
	}
	return convert.DocumentFromStruct(resp), nil
}

// Update merges fields into an existing record.
func (d *Documents) Update(ctx context.Context, collection, id string, fields model.Fields) error {
	return d.write(ctx, d.backend.UpdateDocument, convert.Write{Collection: collection, ID: id, Fields: fields})
}

// Set creates or merges a record.
func (d *Documents) Set(ctx context.Context, collection, id string, fields model.Fields, merge bool) error {
	return d.write(ctx, d.backend.SetDocument, convert.Write{Collection: collection, ID: id, Fields: fields, Merge: merge})
}

// Add inserts a record and returns its id.
func (d *Documents) Add(ctx context.Context, collection string, fields model.Fields) (string, error) {
	req, err := convert.WriteToStruct(convert.Write{Collection: collection, Fields: fields})
	if err != nil {
		return "", err
	}
	resp, err := d.backend.AddDocument(ctx, req)
	if err != nil {
		return "", fromStatus(err)
	}
	return convert.AddedFromStruct(resp), nil
}

// Query runs an equality query once.
func (d *Documents) Query(ctx context.Context, q model.Query) ([]model.Document, error) {
	resp, err := d.backend.QueryDocuments(ctx, convert.QueryToStruct(q))
	if err != nil {
		return nil, fromStatus(err)
	}
	return convert.DocumentsFromStruct(resp), nil
}

type unaryRPC func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func (d *Documents) write(ctx context.Context, call unaryRPC, w convert.Write) error {
	req, err := convert.WriteToStruct(w)
	if err != nil {
		return err
	}
	if _, err := call(ctx, req); err != nil {
		return fromStatus(err)
	}
	return nil
}

// Subscribe streams snapshots of one record to onNext until the returned
// unsubscribe func is called or the stream fails, in which case onError runs
// once. Nothing is delivered after unsubscribe.
func (d *Documents) Subscribe(ctx context.Context, collection, id string,
	onNext func(model.Document), onError func(error)) (func(), error) {
	return d.watch(ctx, func(ctx context.Context) (recvStream, error) {
		return d.backend.WatchDocument(ctx, convert.RefToStruct(collection, id))
	}, func(msg *structpb.Struct) { onNext(convert.DocumentFromStruct(msg)) }, onError)
}

// WatchQuery streams the full query result after every change.
func (d *Documents) WatchQuery(ctx context.Context, q model.Query,
	onNext func([]model.Document), onError func(error)) (func(), error) {
	return d.watch(ctx, func(ctx context.Context) (recvStream, error) {
		return d.backend.WatchQuery(ctx, convert.QueryToStruct(q))
	}, func(msg *structpb.Struct) { onNext(convert.DocumentsFromStruct(msg)) }, onError)
}

type recvStream interface {
	Recv() (*structpb.Struct, error)
}

func (d *Documents) watch(parent context.Context, open func(context.Context) (recvStream, error),
	deliver func(*structpb.Struct), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(parent)
	stream, err := open(ctx)
	if err != nil {
		cancel()
		return nil, fromStatus(err)
	}

	var stopped atomic.Bool
	go func() {
		defer cancel()
		for {
			msg, err := stream.Recv()
			if stopped.Load() {
				return
			}
			if err != nil {
				d.log.Debug("watch stream ended", zap.Error(err))
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				onError(fromStatus(err))
				return
			}
			deliver(msg)
		}
	}()

	return func() {
		stopped.Store(true)
		cancel()
	}, nil
}
