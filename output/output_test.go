package output

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeColl struct {
	docs    []interface{}
	ordered *bool
	err     error
}

func (f *fakeColl) InsertMany(_ context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, docs...)
	for _, o := range opts {
		f.ordered = o.Ordered
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMemoryRecorder(t *testing.T) {
	var r Recorder = NewMemoryRecorder()
	ctx := context.Background()
	require.NoError(t, r.Record(ctx, []Record{{Step: 1, ID: 1}, {Step: 1, ID: 2}}))
	require.NoError(t, r.Record(ctx, nil))
	require.NoError(t, r.Record(ctx, []Record{{Step: 2, ID: 1}}))
	records := r.(*MemoryRecorder).Records()
	assert.Len(t, records, 3)
	assert.Equal(t, int32(2), records[2].Step)
	assert.NoError(t, r.Close(ctx))
}

func TestMongoRecorder(t *testing.T) {
	coll := &fakeColl{}
	r := &MongoRecorder{coll: coll}
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, nil))
	assert.Empty(t, coll.docs)

	require.NoError(t, r.Record(ctx, []Record{{ID: 1, State: "normal"}, {ID: 2, State: "go_left_lane"}}))
	require.Len(t, coll.docs, 2)
	require.NotNil(t, coll.ordered)
	assert.False(t, *coll.ordered)

	raw, err := bson.Marshal(coll.docs[1])
	require.NoError(t, err)
	assert.Equal(t, "go_left_lane", bson.Raw(raw).Lookup("state").StringValue())
	// omitempty
	_, err = bson.Raw(raw).LookupErr("oncoming")
	assert.Error(t, err)
	// 0是有效的控制输出，必须写出
	steering, err := bson.Raw(raw).LookupErr("steering")
	require.NoError(t, err)
	assert.Equal(t, 0.0, steering.Double())
	speed, err := bson.Raw(raw).LookupErr("speed")
	require.NoError(t, err)
	assert.Equal(t, 0.0, speed.Double())
	phase, err := bson.Raw(raw).LookupErr("phase")
	require.NoError(t, err)
	assert.Equal(t, int32(0), phase.Int32())

	coll.err = errors.New("boom")
	err = r.Record(ctx, []Record{{ID: 3}})
	assert.ErrorIs(t, err, coll.err)
	assert.NoError(t, r.Close(ctx))
}

func TestNewMongoRecorderConfig(t *testing.T) {
	_, err := NewMongoRecorder(context.Background(), config.Output{URI: "mongodb://localhost:27017"})
	assert.Error(t, err)
}
