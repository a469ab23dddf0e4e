package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/ukydev/garage-logbook/internal/models"
)

var (
	ErrUnknownRecord = errors.New("unknown maintenance record")
)

const (
	eventDismiss = "dismiss"
	eventRearm   = "rearm"
)

// Statuses maps record ids to their reminder status. It is treated as a value:
// Dismiss and Rearm return a new map and leave the receiver untouched.
type Statuses map[string]models.ReminderStatus

// Status returns the status of recordID, armed when unset.
func (s Statuses) Status(recordID string) models.ReminderStatus {
	if st, ok := s[recordID]; ok && models.IsValidReminderStatus(st) {
		return st
	}
	return models.ReminderArmed
}

func (s Statuses) clone() Statuses {
	out := make(Statuses, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Dismiss marks recordID as dismissed so it never alerts again until the
// record's mileage reminder is edited. Dismissing twice is a no-op and
// returns a nil transition.
func Dismiss(records []models.MaintenanceRecord, statuses Statuses, recordID string) (Statuses, *models.ReminderTransition, error) {
	if !contains(records, recordID) {
		return statuses, nil, fmt.Errorf("dismiss %s: %w", recordID, ErrUnknownRecord)
	}
	return apply(statuses, recordID, eventDismiss)
}

// Rearm makes a dismissed record eligible for alerts again. Rearming an armed
// record is a no-op.
func Rearm(statuses Statuses, recordID string) (Statuses, *models.ReminderTransition, error) {
	return apply(statuses, recordID, eventRearm)
}

// Forget drops the status entry of a deleted record.
func Forget(statuses Statuses, recordID string) Statuses {
	if _, ok := statuses[recordID]; !ok {
		return statuses
	}
	out := statuses.clone()
	delete(out, recordID)
	return out
}

func apply(statuses Statuses, recordID, event string) (Statuses, *models.ReminderTransition, error) {
	from := statuses.Status(recordID)
	machine := newMachine(from)
	if !machine.Can(event) {
		return statuses, nil, nil
	}
	if err := machine.Event(context.Background(), event); err != nil {
		return statuses, nil, fmt.Errorf("reminder %s on %s: %w", event, recordID, err)
	}
	to := models.ReminderStatus(machine.Current())
	out := statuses.clone()
	if to == models.ReminderArmed {
		delete(out, recordID)
	} else {
		out[recordID] = to
	}
	return out, &models.ReminderTransition{
		RecordID: recordID,
		From:     from,
		To:       to,
		At:       time.Now().UTC(),
	}, nil
}

func newMachine(initial models.ReminderStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: eventDismiss, Src: []string{string(models.ReminderArmed)}, Dst: string(models.ReminderDismissed)},
			{Name: eventRearm, Src: []string{string(models.ReminderDismissed)}, Dst: string(models.ReminderArmed)},
		},
		fsm.Callbacks{},
	)
}

func contains(records []models.MaintenanceRecord, recordID string) bool {
	for i := range records {
		if records[i].ID == recordID {
			return true
		}
	}
	return false
}
