package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/upb/rbac-dashboard/client"
	"github.com/upb/rbac-dashboard/models"
)

// dashctl logs in against a running dashboard API and fetches data with the
// caller's role, exercising the same client adapter the dashboard uses.
func main() {
	var (
		addr     = flag.String("addr", "http://localhost:5000", "dashboard API base URL")
		email    = flag.String("email", "viewer@site.com", "login email")
		password = flag.String("password", "viewer123", "login password")
		dataType = flag.String("type", "", "data type to fetch (orders, users, riders, settings)")
		stats    = flag.Bool("stats", false, "fetch dashboard stats")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, *addr, *email, *password, *dataType, *stats); err != nil {
		fmt.Fprintln(os.Stderr, "dashctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, email, password, dataType string, stats bool) error {
	session := client.NewSession()
	api := client.NewClient(addr, session)
	guard := client.NewRouteGuard(api)

	result, err := api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	guard.SetAuthenticated()
	fmt.Printf("logged in as %s (%s)\n", result.User.Email, result.User.Role)

	session.ScheduleExpiryWarning(2*time.Minute, func() {
		fmt.Fprintln(os.Stderr, "warning: session expires soon")
	})

	if dataType != "" {
		resource := models.Resource(dataType)
		if state := guard.EvaluateAllowList(models.RoleViewer, models.RoleEditor, models.RoleAdmin); state != client.RenderChildren {
			return fmt.Errorf("access check failed: %s", state)
		}
		raw, err := api.GetData(ctx, resource)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", dataType, err)
		}
		return printJSON(raw)
	}

	if stats {
		figures, err := api.Stats(ctx)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}
		return printJSON(figures)
	}

	me, err := api.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch current user: %w", err)
	}
	return printJSON(me)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
