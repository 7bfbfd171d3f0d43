package notify

import "fmt"

// Event identifies what happened to a task. The set is closed: the
// resolver, the dispatcher and the relay all switch on it exhaustively.
type Event string

const (
	EventTaskCreated      Event = "task_created"
	EventTaskAssigned     Event = "task_assigned"
	EventStatusChanged    Event = "task_status_changed"
	EventCommentAdded     Event = "comment_added"
	EventFileUploaded     Event = "file_uploaded"
	EventDeadlineReminder Event = "deadline_reminder"
)

// Valid reports whether e is a known event kind.
func (e Event) Valid() bool {
	switch e {
	case EventTaskCreated, EventTaskAssigned, EventStatusChanged,
		EventCommentAdded, EventFileUploaded, EventDeadlineReminder:
		return true
	}
	return false
}

// Title returns the short heading shown in the notification list.
func (e Event) Title() string {
	switch e {
	case EventTaskCreated:
		return "New task created"
	case EventTaskAssigned:
		return "Task assigned"
	case EventStatusChanged:
		return "Task status changed"
	case EventCommentAdded:
		return "New comment"
	case EventFileUploaded:
		return "File uploaded"
	case EventDeadlineReminder:
		return "Deadline approaching"
	}
	return "Notification"
}

// Message renders the human-readable body for one event. actorName falls
// back to "Someone" upstream when the triggering user cannot be resolved.
// detail carries the event-specific extra: the new status for
// EventStatusChanged, the file name for EventFileUploaded.
func (e Event) Message(actorName, taskTitle, detail string) string {
	switch e {
	case EventTaskCreated:
		return fmt.Sprintf("%s created a new task %q", actorName, taskTitle)
	case EventTaskAssigned:
		return fmt.Sprintf("%s assigned the task %q", actorName, taskTitle)
	case EventStatusChanged:
		return fmt.Sprintf("%s moved the task %q to %s", actorName, taskTitle, detail)
	case EventCommentAdded:
		return fmt.Sprintf("%s commented on the task %q", actorName, taskTitle)
	case EventFileUploaded:
		return fmt.Sprintf("%s uploaded %s to the task %q", actorName, detail, taskTitle)
	case EventDeadlineReminder:
		return fmt.Sprintf("The task %q is due soon", taskTitle)
	}
	return fmt.Sprintf("Update on the task %q", taskTitle)
}
