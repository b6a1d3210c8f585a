package discussion

import (
	"errors"
	"fmt"
	"time"

	"symposium/internal/notify"
	"symposium/internal/selection"
)

func note(sev notify.Severity, title, desc string) notify.Notification {
	return notify.Notification{Title: title, Description: desc, Severity: sev, Time: time.Now()}
}

func validationNotification(err error) notify.Notification {
	switch {
	case errors.Is(err, selection.ErrTooFewParticipants):
		return note(notify.SeverityWarning, "Select more participants",
			fmt.Sprintf("Pick at least %d participants to start a discussion.", selection.MinParticipants))
	case errors.Is(err, selection.ErrNoTopic):
		return note(notify.SeverityWarning, "Select a topic", "Pick a topic for the discussion.")
	case errors.Is(err, selection.ErrNoModerator):
		return note(notify.SeverityWarning, "Select a moderator", "Pick one of the participants to moderate.")
	case errors.Is(err, selection.ErrSelectionFull):
		return note(notify.SeverityWarning, "Selection full",
			fmt.Sprintf("You can select up to %d participants.", selection.MaxParticipants))
	default:
		return note(notify.SeverityWarning, "Invalid selection", err.Error())
	}
}

func busyNotification() notify.Notification {
	return note(notify.SeverityInfo, "Discussion in progress", "Wait for the current discussion to finish.")
}

// retryNotification announces the next attempt, counted from 1 for humans.
func retryNotification(nextAttempt, maxAttempts int) notify.Notification {
	return note(notify.SeverityWarning, "Service busy",
		fmt.Sprintf("The generation service is overloaded. Retrying (attempt %d of %d)...", nextAttempt+1, maxAttempts))
}

func successNotification(turns int) notify.Notification {
	return note(notify.SeveritySuccess, "Discussion ready", fmt.Sprintf("Generated %d turns.", turns))
}

func failureNotification(reason FailureReason) notify.Notification {
	switch reason {
	case ReasonOverloaded:
		return note(notify.SeverityError, "Service overloaded",
			"The generation service is overloaded. Please try again later.")
	case ReasonEmptyResult:
		return note(notify.SeverityWarning, "No discussion generated",
			"The service answered without any text. Try again.")
	case ReasonCanceled:
		return note(notify.SeverityError, "Generation stopped", "The discussion was not finished.")
	default:
		return note(notify.SeverityError, "Generation failed",
			"Something went wrong while generating the discussion.")
	}
}
