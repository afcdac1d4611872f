// Package events turns mutation outcomes into Kafka host events. Emission is
// strictly after the database write and never affects the caller's result.
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/pkg/kafka"
	"github.com/Ramsey-B/bramble/pkg/models"
)

const (
	eventHostCreated = "host.created"
	eventHostUpdated = "host.updated"
	eventHostDeleted = "host.deleted"
)

// Emitter publishes host lifecycle events through the Kafka producer.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates an emitter over the given producer.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{producer: producer, logger: logger}
}

// EmitHostMutated publishes a created or updated event. Publish failures are
// logged and swallowed; the mutation already succeeded.
func (e *Emitter) EmitHostMutated(ctx context.Context, hostType models.HostType, hostID string, created bool) {
	eventType := eventHostUpdated
	if created {
		eventType = eventHostCreated
	}

	event := &kafka.HostEvent{
		EventType: eventType,
		HostType:  hostType,
		HostID:    hostID,
	}

	if err := e.producer.PublishHostEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"host_type":  hostType,
			"host_id":    hostID,
		}).Error("failed to emit host mutated event")
	}
}

// EmitHostDeleted publishes a deleted event. Publish failures are logged and
// swallowed.
func (e *Emitter) EmitHostDeleted(ctx context.Context, hostType models.HostType, hostID string) {
	event := &kafka.HostEvent{
		EventType: eventHostDeleted,
		HostType:  hostType,
		HostID:    hostID,
	}

	if err := e.producer.PublishHostEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to emit host deleted event")
	}
}
