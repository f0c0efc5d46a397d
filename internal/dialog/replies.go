package dialog

import (
	"fmt"
	"strings"

	"github.com/antoniostano/taskpal/internal/taskapi"
)

// Every failure path maps to one of these predefined replies; raw technical
// detail never reaches the user.
const (
	replyPromptEmail      = "Hello! To start, please enter your email address."
	replyAlreadyAuthed    = "You are already authenticated. You can start managing your tasks."
	replyInvalidEmail     = "The email address is not valid. Please try again."
	replyPromptPassword   = "Email received. Now, please enter your password."
	replyAuthSuccess      = "Authentication successful. You can now manage your tasks."
	replyAuthFailed       = "Authentication failed. Please check your credentials and try again, starting with your email."
	replyLoggedOut        = "You have successfully logged out."
	replyCannotIdentify   = "I could not identify which task you mean. Could you name it?"
	replyNoPendingTasks   = "You have no pending or in-progress tasks."
	replyListUnavailable  = "I could not retrieve your tasks right now. Please try again later."
	replyOperationFailed  = "I could not complete that right now. Please try again later."
	replyGreeting         = "Hi! How can I help you with your tasks?"
	replyThanks           = "You're welcome! I'm here to help."
	replyNotUnderstood    = "I did not understand that. You can ask me to create, complete, list or delete tasks."
	replyVoiceRetry       = "I could not understand the audio. Could you try again or type your request?"
	replyVoiceUnavailable = "Voice messages are not enabled right now. Please type your request."
)

func replyTaskCreated(title string) string {
	return fmt.Sprintf("Task '%s' created.", title)
}

func replyTaskCompleted(title string) string {
	return fmt.Sprintf("Task '%s' completed.", title)
}

func replyTaskInProgress(title string) string {
	return fmt.Sprintf("Task '%s' marked as in progress.", title)
}

func replyTaskDeleted(title string) string {
	return fmt.Sprintf("Task '%s' deleted.", title)
}

func replyNoTasksFound(name string) string {
	return fmt.Sprintf("No task found for '%s'.", name)
}

func replyNoSimilarTask(name string) string {
	return fmt.Sprintf("No task similar to '%s' found. Perhaps create it first?", name)
}

func replyTaskList(tasks []taskapi.Task) string {
	var b strings.Builder
	b.WriteString("Your active tasks:")
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("\n- %s (%s)", t.Title, t.Status))
	}
	return b.String()
}
