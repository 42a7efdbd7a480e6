package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
	"wondash/server/internal/queue"
)

// Writer drains the transaction queue into the archive with a bounded retry
// loop. A batch that exhausts its retries is dropped with an error log; the
// same rows will be offered again the next time their month is fetched fresh.
type Writer struct {
	archive    *Archive
	queue      *queue.TransactionQueue
	logger     *logrus.Logger
	maxRetries int
	retryDelay time.Duration
}

func NewWriter(archive *Archive, q *queue.TransactionQueue, maxRetries int, retryDelay time.Duration, logger *logrus.Logger) *Writer {
	return &Writer{
		archive:    archive,
		queue:      q,
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Start subscribes the writer and begins draining the queue.
func (w *Writer) Start() {
	w.queue.Subscribe(w.writeBatch)
	w.queue.Start()
}

func (w *Writer) writeBatch(batch []models.TransactionRecord) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Infof("Retrying archive write, attempt %d of %d", attempt, w.maxRetries)
			time.Sleep(w.retryDelay)
		}

		if err = w.archive.InsertTransactions(batch); err == nil {
			w.logger.WithField("batch_size", len(batch)).Debug("Archived transaction batch")
			return nil
		}

		w.logger.Errorf("Archive write failed: %v", err)
	}

	return fmt.Errorf("failed to archive batch after %d attempts: %w", w.maxRetries, err)
}
