package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/pkg/notification"
)

// WelcomeEmail greets a freshly registered account.
type WelcomeEmail struct {
	UserID uint `json:"user_id"`
}

func (j *WelcomeEmail) Handle() error {
	user, err := users.FindByID(j.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", j.UserID, err)
	}

	n := welcomeNote{name: user.Name}
	if errs := notification.Send(user.Email, n); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

type welcomeNote struct {
	name string
}

func (n welcomeNote) Via() []string { return []string{"mail"} }

func (n welcomeNote) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Welcome to Bazaar",
		Body:    fmt.Sprintf("<p>Hi %s, welcome aboard. Happy shopping!</p>", n.name),
	}
}
