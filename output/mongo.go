package output

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// inserter mongo.Collection中用到的方法
type inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoRecorder 写入MongoDB集合的输出
type MongoRecorder struct {
	client *mongo.Client
	coll   inserter
}

// NewMongoRecorder 连接MongoDB并检查连通性
func NewMongoRecorder(ctx context.Context, c config.Output) (*MongoRecorder, error) {
	if c.GetDb() == "" || c.GetColl() == "" {
		return nil, fmt.Errorf("output: db and col must be set, got %q.%q", c.GetDb(), c.GetColl())
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("output: mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("output: mongo ping: %w", err)
	}
	log.Infof("output to mongo %s.%s", c.GetDb(), c.GetColl())
	return &MongoRecorder{
		client: client,
		coll:   client.Database(c.GetDb()).Collection(c.GetColl()),
	}, nil
}

// Record 批量写入（无序写入，单条失败不影响其余记录）
func (r *MongoRecorder) Record(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := lo.Map(records, func(rec Record, _ int) interface{} { return rec })
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("output: insert %d records: %w", len(records), err)
	}
	return nil
}

// Close 断开连接
func (r *MongoRecorder) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}
