package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
)

// taskQueueMaxLen bounds each task list. When a trim fires the newest
// taskQueueMaxLen entries are kept, so jobs are only shed once the
// workers fall this far behind.
const taskQueueMaxLen = 100_000

// AddThumbnailTask enqueues a thumbnail-generation task for an uploaded image.
// Delivery is at-least-once up to the queue bound; the consumer owns retries.
func (db *DB) AddThumbnailTask(ctx context.Context,
	userID, fileID string,
) (taskID string, err error) {
	taskID = gutils.UUID7()

	task := &ThumbnailTask{
		TaskID:    taskID,
		UserID:    userID,
		FileID:    fileID,
		CreatedAt: time.Now(),
	}

	if err = db.utils.RPush(ctx, KeyTaskThumbnail, []interface{}{task},
		db.utils.WithMaxLength(taskQueueMaxLen),
		db.utils.WithTrimSize(taskQueueMaxLen),
	); err != nil {
		return taskID, errors.Wrap(err, "rpush")
	}

	return taskID, nil
}

// AddUserEmailTask enqueues a welcome-email task for a new user.
func (db *DB) AddUserEmailTask(ctx context.Context, userID string) (taskID string, err error) {
	taskID = gutils.UUID7()

	task := &UserEmailTask{
		TaskID:    taskID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err = db.utils.RPush(ctx, KeyTaskUserEmail, []interface{}{task},
		db.utils.WithMaxLength(taskQueueMaxLen),
		db.utils.WithTrimSize(taskQueueMaxLen),
	); err != nil {
		return taskID, errors.Wrap(err, "rpush")
	}

	return taskID, nil
}
