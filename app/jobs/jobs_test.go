package jobs_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/stretchr/testify/require"
)

// A dispatched job must round-trip through the queue to its Handle method:
// the envelope is tagged with the job's %T name, so Setup has to register
// factories under exactly that key or workers drop the payload on the floor.
func TestDispatchedJobReachesHandle(t *testing.T) {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenDSN("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{},
		&models.Order{}, &models.OrderItem{},
	))

	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)
	jobs.Setup(users, orders)

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		Name: "pat", Email: "pat@example.com",
		Password: hash, Role: models.RoleUser, IsActive: true,
	}
	require.NoError(t, users.Create(&user))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	queue.StartWorkers(ctx, 1)

	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	require.NoError(t, queue.Dispatch(&jobs.WelcomeEmail{UserID: user.ID}))

	// No SMTP credentials in the test environment, so Handle runs, fails
	// at the mail send, and lands in the failed-job list. An envelope whose
	// type never matched a registered factory would be dropped before
	// Handle and never get here. 1 attempt + 1s backoff + slack.
	deadline := time.Now().Add(4 * time.Second)
	for time.Now().Before(deadline) {
		for _, failed := range queue.FailedJobs() {
			if job, ok := failed.Job.(*jobs.WelcomeEmail); ok {
				require.Equal(t, user.ID, job.UserID)
				require.Error(t, failed.Err)
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("dispatched welcome email never reached its handler")
}
