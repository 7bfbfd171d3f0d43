package notify

import (
	"log"

	"writedesk/models"

	"gorm.io/gorm"
)

// PushMessage is the lightweight signal sent over a relay channel. Clients
// refetch the notification list themselves; the full payload is not pushed.
type PushMessage struct {
	Type string          `json:"type"`
	Data PushMessageData `json:"data"`
}

type PushMessageData struct {
	Event  Event  `json:"event"`
	TaskID *uint  `json:"task_id,omitempty"`
	Title  string `json:"title"`
}

// Result reports what one fan-out attempt did. Dispatch never fails the
// primary mutation; callers inspect the result and decide whether to log
// or count the errors instead of having them silently discarded.
type Result struct {
	Event      Event
	Recipients int
	Written    int
	Pushed     int
	Errors     []error
}

// Failed reports whether any per-recipient write failed.
func (r Result) Failed() bool {
	return len(r.Errors) > 0
}

// Err returns the first error, or nil. Convenient for logging.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Dispatcher turns one task event into persisted notification rows and
// relay pushes. One row per recipient per event, written sequentially;
// a failure partway through leaves earlier rows in place (at-least-one
// per recipient attempted, no rollback, no retry).
type Dispatcher struct {
	DB     *gorm.DB
	Hub    *Hub
	Logger *log.Logger
}

func NewDispatcher(db *gorm.DB, hub *Hub, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		DB:     db,
		Hub:    hub,
		Logger: logger,
	}
}

// Dispatch resolves recipients for the event, persists one notification
// row per recipient and pushes a signal to each recipient's open relay
// channels. actorID 0 means system-triggered. detail is the event-specific
// extra (new status, file name).
func (d *Dispatcher) Dispatch(event Event, task *models.Task, actorID uint, detail string) Result {
	result := Result{Event: event}

	recipients, err := ResolveRecipients(d.DB, event, task, actorID)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}
	result.Recipients = len(recipients)

	actorName := "Someone"
	var triggeredBy *uint
	if actorID != 0 {
		var actor models.User
		if err := d.DB.First(&actor, actorID).Error; err == nil {
			actorName = actor.DisplayName()
			triggeredBy = &actor.ID
		}
	}

	title := event.Title()
	message := event.Message(actorName, task.Title, detail)

	var taskID *uint
	if task.ID != 0 {
		taskID = &task.ID
	}

	for _, recipient := range recipients {
		notification := models.Notification{
			UserID:        recipient.ID,
			Type:          string(event),
			Title:         title,
			Message:       message,
			TaskID:        taskID,
			TriggeredByID: triggeredBy,
		}
		if err := d.DB.Create(&notification).Error; err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Written++

		result.Pushed += d.Hub.Push(recipient.ID, PushMessage{
			Type: "notification",
			Data: PushMessageData{
				Event:  event,
				TaskID: taskID,
				Title:  title,
			},
		})
	}

	if d.Logger != nil {
		d.Logger.Printf("dispatched %s: recipients=%d written=%d pushed=%d errors=%d",
			event, result.Recipients, result.Written, result.Pushed, len(result.Errors))
	}

	return result
}
