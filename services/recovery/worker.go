package recovery

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"casamar/config"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeRecoveryAttempt = "recovery:attempt"

type attemptPayload struct {
	GuestID string `json:"guestId"`
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// AsynqScheduler plants recovery ticks on the task queue.
type AsynqScheduler struct {
	client *asynq.Client
}

// NewAsynqScheduler connects a scheduler to the queue's Redis instance.
func NewAsynqScheduler() *AsynqScheduler {
	return &AsynqScheduler{client: asynq.NewClient(queueRedisOpt())}
}

func (s *AsynqScheduler) ScheduleAttempt(guestID string, delay time.Duration) error {
	b, err := json.Marshal(attemptPayload{GuestID: guestID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeRecoveryAttempt, b)
	_, err = s.client.Enqueue(task, asynq.ProcessIn(delay))
	return err
}

// InitRecoveryWorker runs the async worker in background.
func InitRecoveryWorker(m *Machine) {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRecoveryAttempt, func(ctx context.Context, task *asynq.Task) error {
		var p attemptPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			m.Logger.Error("invalid recovery task payload", zap.Error(err))
			return nil
		}
		return m.HandleTick(ctx, p.GuestID)
	})

	go func() {
		log.Println("[RecoveryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RecoveryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RecoveryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// RequeuePending re-plants ticks for every state whose attempt time has
// passed. Run at startup so in-flight recoveries survive a restart.
func (m *Machine) RequeuePending(ctx context.Context) error {
	due, err := m.States.ListDue(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, state := range due {
		if err := m.Schedule.ScheduleAttempt(state.GuestID, 0); err != nil {
			m.Logger.Warn("failed to requeue pending recovery",
				zap.String("guestId", state.GuestID), zap.Error(err))
		}
	}
	if len(due) > 0 {
		m.Logger.Info("requeued pending recoveries", zap.Int("count", len(due)))
	}
	return nil
}

// StartPollLoop is a slow backstop for queue tasks lost between restarts:
// it periodically re-plants ticks for overdue states. Duplicate ticks are
// harmless, the atomic claim lets only one attempt proceed.
func (m *Machine) StartPollLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := m.RequeuePending(ctx); err != nil {
					m.Logger.Error("recovery poll loop failed", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
