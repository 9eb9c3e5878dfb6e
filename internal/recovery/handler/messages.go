package handler

import "github.com/TAKIS21345/techsteps-sub005/internal/core/domain"

// Message is the user-facing translation of an error. Wording is kept
// simple and free of technical detail for the senior audience.
type Message struct {
	Title   string
	Body    string
	Actions []string
}

var messageCatalog = map[domain.Kind]Message{
	domain.KindNetwork: {
		Title:   "Connection problem",
		Body:    "We're having trouble reaching the internet. Your work is saved and will continue automatically.",
		Actions: []string{"Try Again"},
	},
	domain.KindAuth: {
		Title:   "Please sign in again",
		Body:    "Your session has ended. Signing in again will pick up where you left off.",
		Actions: []string{"Sign In"},
	},
	domain.KindResource: {
		Title:   "Things are running slowly",
		Body:    "We tidied things up to speed the app back up. You can keep going.",
		Actions: nil,
	},
	domain.KindValidation: {
		Title:   "Please check your answer",
		Body:    "Something in the form needs a small correction before we can continue.",
		Actions: []string{"Review"},
	},
	domain.KindUnknown: {
		Title:   "Something went wrong",
		Body:    "Don't worry, nothing is lost. You can try again or ask for help.",
		Actions: []string{"Try Again", "Get Help"},
	},
}

// MessageFor translates an error into its user-facing message.
func MessageFor(err error) Message {
	if msg, ok := messageCatalog[domain.KindOf(err)]; ok {
		return msg
	}
	return messageCatalog[domain.KindUnknown]
}
