package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/trace"
)

const (
	mongoDatabase    = "tasks"
	mongoCollection  = "tasks"
	mongoCounters    = "counters"
	mongoOpTimeout   = 5 * time.Second
	taskSequenceName = "tasks"
)

type TaskMongoRepo struct {
	cli    *mongo.Client
	logger *log.Logger
	tracer trace.Tracer
}

// NewTaskMongoRepo connects to MongoDB and checks the connection with a ping.
func NewTaskMongoRepo(ctx context.Context, uri string, logger *log.Logger, tracer trace.Tracer) (*TaskMongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	repo := &TaskMongoRepo{
		cli:    client,
		logger: logger,
		tracer: tracer,
	}
	if err := repo.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

func (r *TaskMongoRepo) Disconnect(ctx context.Context) error {
	return r.cli.Disconnect(ctx)
}

func (r *TaskMongoRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	if err := r.cli.Ping(ctx, readpref.Primary()); err != nil {
		r.logger.Error("mongo ping failed", "err", err)
		return err
	}
	return nil
}

func (r *TaskMongoRepo) getCollection() *mongo.Collection {
	return r.cli.Database(mongoDatabase).Collection(mongoCollection)
}

func (r *TaskMongoRepo) nextId(ctx context.Context) (int64, error) {
	counters := r.cli.Database(mongoDatabase).Collection(mongoCounters)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskSequenceName},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate task id: %w", err)
	}
	return counter.Seq, nil
}

func (r *TaskMongoRepo) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskMongoRepo.Insert")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	id, err := r.nextId(ctx)
	if err != nil {
		r.logger.Error("insert failed", "err", err)
		return domain.Task{}, err
	}
	task.Id = id

	if _, err := r.getCollection().InsertOne(ctx, task); err != nil {
		r.logger.Error("insert failed", "err", err)
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	r.logger.Debug("task inserted", "id", task.Id)
	return task, nil
}

func (r *TaskMongoRepo) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskMongoRepo.Update")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	res, err := r.getCollection().ReplaceOne(ctx, bson.M{"_id": task.Id}, task)
	if err != nil {
		r.logger.Error("update failed", "id", task.Id, "err", err)
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.Task{}, domain.ErrTaskNotFound()
	}

	r.logger.Debug("task updated", "id", task.Id)
	return task, nil
}

func (r *TaskMongoRepo) FindAll(ctx context.Context) (domain.Tasks, error) {
	ctx, span := r.tracer.Start(ctx, "TaskMongoRepo.FindAll")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cursor, err := r.getCollection().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.logger.Error("find all failed", "err", err)
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	tasks := domain.Tasks{}
	if err = cursor.All(ctx, &tasks); err != nil {
		r.logger.Error("find all failed", "err", err)
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskMongoRepo) FindById(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskMongoRepo.FindById")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var task domain.Task
	err := r.getCollection().FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound()
		}
		r.logger.Error("find by id failed", "id", id, "err", err)
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}
