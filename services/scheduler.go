package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartOverdueScheduler logs pending tasks whose due date has passed, once
// per hour. TODO: surface these to the client as a reminder feed instead of
// only logging them.
func (s *TaskService) StartOverdueScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] not started: %v", err)
		return
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			tasks, err := s.store.OverduePendingTasks(time.Now())
			if err != nil {
				log.Printf("[Scheduler] overdue sweep failed: %v", err)
				return
			}
			for _, t := range tasks {
				log.Printf("[Scheduler] task %q (user %s) overdue since %s",
					t.Title, t.UserID, t.DueDate.Format(time.RFC3339))
			}
		}),
	)
}
