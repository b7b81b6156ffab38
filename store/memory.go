package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/upb/rbac-dashboard/models"
)

// MemoryStore is an in-memory Store seeded with demo dashboard data.
// Guarded by a RWMutex; reads dominate under demo traffic.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   []models.Order
	users    []models.CustomerAccount
	riders   []models.Rider
	settings models.Settings
}

// NewMemoryStore creates a store seeded with the demo records
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: []models.Order{
			{ID: 1, CustomerName: "John Doe", OrderNumber: "ORD-001", Status: "Pending", Amount: 150.00, Date: "2024-01-15"},
			{ID: 2, CustomerName: "Jane Smith", OrderNumber: "ORD-002", Status: "Delivered", Amount: 89.99, Date: "2024-01-14"},
			{ID: 3, CustomerName: "Bob Johnson", OrderNumber: "ORD-003", Status: "Processing", Amount: 245.50, Date: "2024-01-13"},
		},
		users: []models.CustomerAccount{
			{ID: 1, Name: "John Doe", Email: "john@example.com", Role: "customer", Status: "active", JoinDate: "2024-01-01"},
			{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Role: "customer", Status: "active", JoinDate: "2024-01-02"},
			{ID: 3, Name: "Bob Johnson", Email: "bob@example.com", Role: "customer", Status: "inactive", JoinDate: "2024-01-03"},
		},
		riders: []models.Rider{
			{ID: 1, Name: "Mike Wilson", Email: "mike@delivery.com", Status: "available", Rating: 4.8, TotalDeliveries: 150},
			{ID: 2, Name: "Sarah Davis", Email: "sarah@delivery.com", Status: "busy", Rating: 4.9, TotalDeliveries: 200},
			{ID: 3, Name: "Tom Anderson", Email: "tom@delivery.com", Status: "offline", Rating: 4.7, TotalDeliveries: 120},
		},
		settings: models.Settings{
			SiteName:         "RBAC Admin Dashboard",
			Theme:            "dark",
			Version:          "1.0.0",
			MaintenanceMode:  false,
			MaxLoginAttempts: 5,
			SessionTimeout:   600,
		},
	}
}

// Get returns all records of the given resource type
func (s *MemoryStore) Get(ctx context.Context, resource models.Resource) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case models.ResourceOrders:
		return append([]models.Order(nil), s.orders...), nil
	case models.ResourceUsers:
		return append([]models.CustomerAccount(nil), s.users...), nil
	case models.ResourceRiders:
		return append([]models.Rider(nil), s.riders...), nil
	case models.ResourceSettings:
		return s.settings, nil
	default:
		return nil, ErrResourceNotFound
	}
}

// Update applies a partial patch to the record with the given id and returns
// the updated record. The settings resource is a singleton; its id is ignored.
func (s *MemoryStore) Update(ctx context.Context, resource models.Resource, id string, patch map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case models.ResourceOrders:
		return patchByID(s.orders, id, patch)
	case models.ResourceUsers:
		return patchByID(s.users, id, patch)
	case models.ResourceRiders:
		return patchByID(s.riders, id, patch)
	case models.ResourceSettings:
		updated, err := mergePatch(s.settings, patch)
		if err != nil {
			return nil, err
		}
		s.settings = updated
		return s.settings, nil
	default:
		return nil, ErrResourceNotFound
	}
}

// Delete removes the record with the given id. Settings cannot be deleted.
func (s *MemoryStore) Delete(ctx context.Context, resource models.Resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case models.ResourceOrders:
		rest, err := deleteByID(s.orders, id)
		if err != nil {
			return err
		}
		s.orders = rest
		return nil
	case models.ResourceUsers:
		rest, err := deleteByID(s.users, id)
		if err != nil {
			return err
		}
		s.users = rest
		return nil
	case models.ResourceRiders:
		rest, err := deleteByID(s.riders, id)
		if err != nil {
			return err
		}
		s.riders = rest
		return nil
	default:
		return ErrResourceNotFound
	}
}

// Stats returns aggregate dashboard figures computed from the current records
func (s *MemoryStore) Stats(ctx context.Context) (models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DashboardStats{
		TotalOrders: len(s.orders),
		TotalUsers:  len(s.users),
		TotalRiders: len(s.riders),
	}
	for _, order := range s.orders {
		if order.Status == "Pending" {
			stats.PendingOrders++
		}
		stats.TotalRevenue += order.Amount
	}
	for _, rider := range s.riders {
		if rider.Status == "available" {
			stats.ActiveRiders++
		}
	}
	return stats, nil
}

// record constrains patchByID/deleteByID to the dashboard record types,
// all of which carry an integer ID as their first field.
type record interface {
	models.Order | models.CustomerAccount | models.Rider
}

func recordID[T record](rec T) int {
	switch v := any(rec).(type) {
	case models.Order:
		return v.ID
	case models.CustomerAccount:
		return v.ID
	case models.Rider:
		return v.ID
	}
	return 0
}

func patchByID[T record](records []T, id string, patch map[string]any) (T, error) {
	var zero T
	numeric, err := strconv.Atoi(id)
	if err != nil {
		return zero, ErrRecordNotFound
	}
	for i, rec := range records {
		if recordID(rec) != numeric {
			continue
		}
		// The id is not patchable
		delete(patch, "id")
		updated, err := mergePatch(rec, patch)
		if err != nil {
			return zero, err
		}
		records[i] = updated
		return updated, nil
	}
	return zero, ErrRecordNotFound
}

func deleteByID[T record](records []T, id string) ([]T, error) {
	numeric, err := strconv.Atoi(id)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	for i, rec := range records {
		if recordID(rec) == numeric {
			return append(records[:i:i], records[i+1:]...), nil
		}
	}
	return nil, ErrRecordNotFound
}

// mergePatch applies a JSON merge of patch onto rec. Unknown patch keys are
// ignored; type mismatches surface as an error.
func mergePatch[T any](rec T, patch map[string]any) (T, error) {
	var zero T
	base, err := json.Marshal(rec)
	if err != nil {
		return zero, err
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return zero, err
	}
	for k, v := range patch {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("invalid patch: %w", err)
	}
	return out, nil
}
