package port

import "github.com/garyjia/purchase-bot/internal/domain/entity"

// MetricsRecorder receives business counters from the application services
type MetricsRecorder interface {
	RequestSubmitted()
	RequestResolved(decision entity.Decision)
	CommandHandled(command, outcome string)
	NotificationSent(kind string)
	SetPending(n int)
}

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) RequestSubmitted() {}
func (NopMetrics) RequestResolved(entity.Decision) {}
func (NopMetrics) CommandHandled(string, string) {}
func (NopMetrics) NotificationSent(string) {}
func (NopMetrics) SetPending(int) {}
