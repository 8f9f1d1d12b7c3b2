package services

import (
	"github.com/hvargas/task-management-api/internal/models"
)

// StatsDelta is the adjustment a single lifecycle transition contributes to
// one user's derived counters.
type StatsDelta struct {
	CompletedDelta int64
	CostDelta      float64
}

// statsDeltas computes, per user, the counter adjustment implied by a task
// transition. oldTask == nil means creation, newTask == nil means deletion.
// Both tasks must carry their assignment sets.
//
// A user holds credit (+1 completed, +cost) for every COMPLETED task they
// are assigned to; the delta is whatever moves the counters from the old
// state to the new one:
//
//   - entering COMPLETED credits the final assignment set
//   - leaving COMPLETED debits the prior assignment set
//   - staying COMPLETED credits newly assigned users, debits removed ones,
//     and shifts retained users by the cost difference
//   - staying non-COMPLETED contributes nothing, whatever else changed
func statsDeltas(oldTask, newTask *models.Task) map[uint64]StatsDelta {
	deltas := make(map[uint64]StatsDelta)

	add := func(userID uint64, completed int64, cost float64) {
		d := deltas[userID]
		d.CompletedDelta += completed
		d.CostDelta += cost
		if d.CompletedDelta == 0 && d.CostDelta == 0 {
			delete(deltas, userID)
			return
		}
		deltas[userID] = d
	}

	oldCompleted := oldTask != nil && oldTask.Status == models.TaskStatusCompleted
	newCompleted := newTask != nil && newTask.Status == models.TaskStatusCompleted

	switch {
	case !oldCompleted && newCompleted:
		for _, userID := range newTask.AssignedUserIDs() {
			add(userID, 1, newTask.Cost)
		}

	case oldCompleted && !newCompleted:
		for _, userID := range oldTask.AssignedUserIDs() {
			add(userID, -1, -oldTask.Cost)
		}

	case oldCompleted && newCompleted:
		oldSet := assignedSet(oldTask)
		newSet := assignedSet(newTask)

		for userID := range oldSet {
			if _, kept := newSet[userID]; !kept {
				add(userID, -1, -oldTask.Cost)
			}
		}
		for userID := range newSet {
			if _, kept := oldSet[userID]; !kept {
				add(userID, 1, newTask.Cost)
			} else if newTask.Cost != oldTask.Cost {
				// Retained assignee on a task whose cost changed: the
				// completed count is untouched but the credited cost drifts.
				add(userID, 0, newTask.Cost-oldTask.Cost)
			}
		}
	}

	return deltas
}

func assignedSet(task *models.Task) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(task.Assignments))
	for _, a := range task.Assignments {
		set[a.UserID] = struct{}{}
	}
	return set
}
