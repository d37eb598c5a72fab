package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/kbukum/recoverykit/observability"
)

// InfrastructureInfo describes a connected backing service.
type InfrastructureInfo struct {
	Name    string
	Type    string
	Target  string
	Healthy bool
}

// ComponentInfo describes an in-process component.
type ComponentInfo struct {
	Name   string
	Detail string
}

// RouteInfo is a registered HTTP route.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary collects what the application started, for the startup banner.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	components      []ComponentInfo
	routes          []RouteInfo
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure records a backing service.
func (s *Summary) TrackInfrastructure(name, kind, target string, healthy bool) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{Name: name, Type: kind, Target: target, Healthy: healthy})
}

// TrackComponent records an in-process component.
func (s *Summary) TrackComponent(name, detail string) {
	s.components = append(s.components, ComponentInfo{Name: name, Detail: detail})
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// Routes returns the tracked routes.
func (s *Summary) Routes() []RouteInfo {
	return s.routes
}

// Write prints the banner to w. health may be nil.
func (s *Summary) Write(w io.Writer, health *observability.ServiceHealth) {
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "\n📊 Infrastructure\n")
		for i, inf := range s.infrastructure {
			icon := "✅"
			if !inf.Healthy {
				icon = "❌"
			}
			fmt.Fprintf(w, "   %s %s %s [%s]: %s\n", branch(i, len(s.infrastructure)), icon, inf.Name, inf.Type, inf.Target)
		}
	}

	if len(s.components) > 0 {
		fmt.Fprintf(w, "\n📦 Components\n")
		for i, c := range s.components {
			fmt.Fprintf(w, "   %s %s (%s)\n", branch(i, len(s.components)), c.Name, c.Detail)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-6s %s\n", branch(i, len(s.routes)), r.Method, r.Path)
		}
	}

	if health != nil && len(health.Components) > 0 {
		fmt.Fprintf(w, "\n🏥 Health: %s\n", health.Status)
		for i, h := range health.Components {
			msg := ""
			if h.Message != "" {
				msg = ": " + h.Message
			}
			fmt.Fprintf(w, "   %s %s %s%s\n", branch(i, len(health.Components)), healthIcon(h.Status), h.Name, msg)
		}
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
