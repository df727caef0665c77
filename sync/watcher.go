package sync

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"attendance-core/config"
	"attendance-core/models"
)

const watchRetryDelay = 5 * time.Second

// Watcher tails one Mongo change stream per logical table and feeds typed
// events into the bus and the cache. Stream loss flips Connected to false
// and is retried until the context ends.
type Watcher struct {
	bus     *Bus
	cache   *Cache
	healthy atomic.Int32
	tables  []string
}

func NewWatcher(bus *Bus, cache *Cache) *Watcher {
	return &Watcher{
		bus:   bus,
		cache: cache,
		tables: []string{
			config.EmployeeCollection,
			config.CenterCollection,
			config.AttendanceCollection,
		},
	}
}

// Connected reports whether every table stream is currently established.
func (w *Watcher) Connected() bool {
	return int(w.healthy.Load()) == len(w.tables)
}

// Run starts one watch loop per table and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	for _, table := range w.tables {
		go w.watchTable(ctx, table)
	}
	<-ctx.Done()
}

func (w *Watcher) watchTable(ctx context.Context, table string) {
	for {
		if ctx.Err() != nil {
			return
		}

		coll := config.GetCollection(table)
		opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
		stream, err := coll.Watch(ctx, mongo.Pipeline{}, opts)
		if err != nil {
			log.Printf("sync: failed to open change stream on %s: %v", table, err)
			sleepCtx(ctx, watchRetryDelay)
			continue
		}

		w.healthy.Add(1)
		w.consume(ctx, table, stream)
		w.healthy.Add(-1)

		stream.Close(context.Background())
		sleepCtx(ctx, watchRetryDelay)
	}
}

type changeDocument struct {
	OperationType string   `bson:"operationType"`
	FullDocument  bson.Raw `bson:"fullDocument"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

func (w *Watcher) consume(ctx context.Context, table string, stream *mongo.ChangeStream) {
	for stream.Next(ctx) {
		var change changeDocument
		if err := stream.Decode(&change); err != nil {
			log.Printf("sync: failed to decode change on %s: %v", table, err)
			continue
		}

		event, ok := w.toEvent(table, change)
		if !ok {
			continue
		}
		w.cache.ApplyEvent(event)
		w.bus.Publish(event)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Printf("sync: change stream on %s dropped: %v", table, err)
	}
}

func (w *Watcher) toEvent(table string, change changeDocument) (Event, bool) {
	switch change.OperationType {
	case "delete":
		return Event{Table: table, Type: EventDelete, Row: change.DocumentKey.ID}, true
	case "insert", "update", "replace":
		eventType := EventInsert
		if change.OperationType != "insert" {
			eventType = EventUpdate
		}
		row, err := decodeRow(table, change.FullDocument)
		if err != nil {
			log.Printf("sync: failed to decode %s row: %v", table, err)
			return Event{}, false
		}
		return Event{Table: table, Type: eventType, Row: row}, true
	default:
		return Event{}, false
	}
}

func decodeRow(table string, raw bson.Raw) (interface{}, error) {
	switch table {
	case config.EmployeeCollection:
		var row models.Employee
		err := bson.Unmarshal(raw, &row)
		return row, err
	case config.CenterCollection:
		var row models.Center
		err := bson.Unmarshal(raw, &row)
		return row, err
	default:
		var row models.AttendanceRecord
		err := bson.Unmarshal(raw, &row)
		return row, err
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
