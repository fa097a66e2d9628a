package server

import (
	"time"

	"github.com/NVIDIA/instance-registry/pkg/instance"
	"github.com/NVIDIA/instance-registry/pkg/journal"
	"github.com/NVIDIA/instance-registry/pkg/registry"
)

// API request and response types

// InvokeRequest asks the daemon to dispatch an operation against a
// registered instance.
type InvokeRequest struct {
	Operation string         `json:"operation"`
	Args      map[string]any `json:"args,omitempty"`
}

// InvokeResponse carries the result of a dispatched operation.
type InvokeResponse struct {
	InstanceID string    `json:"instanceId"`
	Operation  string    `json:"operation"`
	Result     any       `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
}

// ListInstancesResponse lists the instances currently owned by the host.
type ListInstancesResponse struct {
	Count     int             `json:"count"`
	Instances []instance.Info `json:"instances"`
}

// ReleaseResponse confirms the owner reference was dropped.
type ReleaseResponse struct {
	InstanceID string    `json:"instanceId"`
	Released   bool      `json:"released"`
	Timestamp  time.Time `json:"timestamp"`
}

// DiagnosticsResponse exposes registry and journal state for leak triage.
type DiagnosticsResponse struct {
	OwnedInstances  int                       `json:"ownedInstances"`
	RegistryEntries []registry.EntryInfo      `json:"registryEntries"`
	EventSummary    map[journal.EventType]int `json:"eventSummary,omitempty"`
	RecentEvents    []journal.Event           `json:"recentEvents,omitempty"`
	Timestamp       time.Time                 `json:"timestamp"`
}
