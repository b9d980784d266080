package cron

import (
	"context"
	"log"
	"time"

	"townhall/config"
	"townhall/services/reminder"
	"townhall/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitDrainWorker starts the async worker and the periodic scheduler that
// fires reminder drain cycles. When no drain schedule is configured the
// worker is not started at all — the deployed default, where reminders sit
// until an operator enables the trigger.
func InitDrainWorker(drainer *reminder.Drainer) {
	schedule := config.AppConfig.ReminderDrainSchedule
	if schedule == "" {
		log.Println("[DrainWorker] no drain schedule configured, periodic drain disabled")
		return
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDrainQueueDB,
	}

	// One invocation at a time; overlapping drains are tolerated by the
	// promotion claim but there is no reason to invite them.
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReminderDrain, handleDrainTask(drainer))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(schedule, tasks.NewDrainTask()); err != nil {
		log.Printf("[DrainWorker] failed to register drain schedule %q: %v", schedule, err)
		return
	}

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[DrainWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[DrainWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[DrainWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[DrainWorker] scheduler stopped: %v", err)
		}
	}()
}

func handleDrainTask(drainer *reminder.Drainer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		drained := drainer.DrainDueReminders(ctx)
		if drained > 0 {
			log.Printf("[DrainHandler] promoted %d reminder(s)", drained)
		}
		// Drain failures are logged and swallowed inside the drainer; the
		// task always succeeds so the host never re-delivers.
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDrainQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[DrainWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
