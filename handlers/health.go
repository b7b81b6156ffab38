package handlers

import (
	"net/http"

	"github.com/upb/rbac-dashboard/utils"
)

// HealthCheck returns a simple health check handler
func HealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{
			"status":  "OK",
			"message": "Server is running with mock data",
		})
	}
}
