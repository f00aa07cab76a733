package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/app/routes"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/internal/server"
	"github.com/vastrahub/vastra/pkg/database"
)

// vastra serve starts the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run()
	},
}

// vastra route:list prints all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck

		productRepo := repositories.NewProductRepository()
		orderRepo := repositories.NewOrderRepository()
		userRepo := repositories.NewUserRepository()
		r := routes.Register(routes.Deps{
			Users:     userRepo,
			Catalog:   services.NewCatalogService(productRepo),
			Checkout:  services.NewCheckoutService(productRepo, orderRepo, nil),
			Orders:    services.NewOrderService(orderRepo, productRepo, nil),
			Dashboard: services.NewDashboardService(orderRepo, productRepo, userRepo),
		})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
