// Package jobs holds the background work dispatched from request handlers.
// Jobs are serialised onto the queue and reconstructed by name, so they
// carry ids, not loaded models; Setup injects the repositories the handlers
// need at runtime.
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

var (
	users  *repositories.UserRepository
	orders *repositories.OrderRepository
)

// Setup wires the repositories and registers every job type with the queue.
// Must run before workers start.
func Setup(u *repositories.UserRepository, o *repositories.OrderRepository) {
	users = u
	orders = o

	// Envelopes are tagged with the job's %T name, so registration must
	// use the same key for the worker to find the factory.
	register(func() queue.Job { return &OrderConfirmation{} })
	register(func() queue.Job { return &WelcomeEmail{} })
}

func register(factory func() queue.Job) {
	queue.Register(fmt.Sprintf("%T", factory()), factory)
}
