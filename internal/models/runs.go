package models

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RunsDbName  = "eventhub"
	RunsColName = "job_runs"
)

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// JobRun is one execution of a batch job with its report counters.
type JobRun struct {
	ID         string           `bson:"_id" json:"id"`
	Job        string           `bson:"job" json:"job"`
	StartedAt  time.Time        `bson:"started_at" json:"started_at"`
	FinishedAt time.Time        `bson:"finished_at" json:"finished_at"`
	Status     RunStatus        `bson:"status" json:"status"`
	Error      string           `bson:"error,omitempty" json:"error,omitempty"`
	Counts     map[string]int64 `bson:"counts" json:"counts"`
}

func NewJobRun(job string, startedAt time.Time) *JobRun {
	return &JobRun{
		ID:        uuid.NewString(),
		Job:       job,
		StartedAt: startedAt.UTC(),
		Status:    RunSucceeded,
		Counts:    map[string]int64{},
	}
}

type RunsRepo interface {
	RecordRun(ctx context.Context, run *JobRun) error
	// ListRuns returns the most recent runs first. An empty job matches every job.
	ListRuns(ctx context.Context, job string, limit int) ([]JobRun, error)
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

func (mdb *MongodbRepo) RecordRun(ctx context.Context, run *JobRun) error {
	col, err := mdb.GetCollection(ctx, mdb.dbName, RunsColName)
	if err != nil {
		return storageErr("get runs collection", err)
	}
	if _, err := col.InsertOne(ctx, run); err != nil {
		return storageErr("insert job run", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListRuns(ctx context.Context, job string, limit int) ([]JobRun, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, RunsColName)
	if err != nil {
		return nil, storageErr("get runs collection", err)
	}

	filter := bson.M{}
	if job != "" {
		filter["job"] = job
	}
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, storageErr("find job runs", err)
	}
	defer cursor.Close(ctx)

	var runs []JobRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, storageErr("decode job runs", err)
	}
	return runs, nil
}

// LogRunsRepo is used when no run-history database is configured. It logs each run
// and keeps the latest ones in memory for the lifetime of the process.
type LogRunsRepo struct {
	logger *slog.Logger
	keep   int

	mu   sync.Mutex
	runs []JobRun
}

func NewLogRunsRepo(logger *slog.Logger, keep int) *LogRunsRepo {
	if keep <= 0 {
		keep = 50
	}
	return &LogRunsRepo{logger: logger, keep: keep}
}

func (l *LogRunsRepo) RecordRun(ctx context.Context, run *JobRun) error {
	l.logger.Info("Job run finished",
		"run_id", run.ID,
		"job", run.Job,
		"status", run.Status,
		"duration", run.FinishedAt.Sub(run.StartedAt),
		"counts", run.Counts,
	)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, *run)
	if len(l.runs) > l.keep {
		l.runs = l.runs[len(l.runs)-l.keep:]
	}
	return nil
}

func (l *LogRunsRepo) ListRuns(ctx context.Context, job string, limit int) ([]JobRun, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []JobRun
	for i := len(l.runs) - 1; i >= 0; i-- {
		if job != "" && l.runs[i].Job != job {
			continue
		}
		out = append(out, l.runs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
