// Package jobs hosts the background task definitions and the Asynq worker.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup rebuilds the cached annual report for a year.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload names the year whose report should be regenerated.
type ReportWarmupPayload struct {
	Year int `json:"year"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(year int) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Year: year})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data, asynq.Queue(QueueDefault)), nil
}

// Client wraps the Asynq producer side.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a task producer against Redis.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReportWarmup schedules a report rebuild for the given year. It
// satisfies the closing service's warmup hook.
func (c *Client) EnqueueReportWarmup(ctx context.Context, year int) error {
	task, err := NewReportWarmupTask(year)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
