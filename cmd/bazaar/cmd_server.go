package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/internal/server"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// bazaar serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// bazaar route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		// Mounting only needs the handler graph, not live backends, so
		// the dependencies are built without opening any connection.
		users := repositories.NewUserRepository(nil)
		products := repositories.NewProductRepository(nil)
		orders := repositories.NewOrderRepository(nil, products)
		sessions := repositories.NewSessionRepository(nil)
		gate := repositories.NewAuthAdapter(users, products, orders)

		r := router.New()
		routes.RegisterAPI(r, routes.Deps{
			Users:    controllers.NewUserController(users, services.NewAuthService(sessions, users)),
			Products: controllers.NewProductController(products),
			Orders:   controllers.NewOrderController(orders),
			Uploads:  controllers.NewUploadController(),
			Health:   controllers.NewHealthController(),
			Auth:     gate,
			Owners:   gate,
			Hub:      ws.NewHub(),
		})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
