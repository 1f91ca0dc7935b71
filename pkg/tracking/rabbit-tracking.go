package tracking

import (
	"context"
	"log"
	"time"

	"github.com/matst80/zipfinder/pkg/common"
	"github.com/matst80/zipfinder/pkg/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

const lookupTopic messaging.ChangeTopic = "city_lookup"

// RabbitTracking batches lookup events and publishes them as JSON arrays on
// the global city_lookup topic.
type RabbitTracking struct {
	country    string
	connection *amqp.Connection
	queue      *common.QueueHandler[LookupEvent]
}

func NewRabbitTracking(url, country string) (*RabbitTracking, error) {
	ret := &RabbitTracking{
		country: country,
	}
	if err := ret.connect(url); err != nil {
		return nil, err
	}
	ret.queue = common.NewQueueHandler[LookupEvent](ret.send, 100)
	return ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, "global", lookupTopic); err != nil {
		conn.Close()
		return err
	}
	t.connection = conn
	return nil
}

// Close flushes queued events and closes the connection.
func (t *RabbitTracking) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.queue.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("tracking flush interrupted with %d events queued", t.queue.Len())
	}
	return t.connection.Close()
}

func (t *RabbitTracking) send(events []LookupEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := messaging.SendChange(ctx, t.connection, "global", lookupTopic, events); err != nil {
		log.Printf("error sending %d lookup events: %v", len(events), err)
	}
}

func (t *RabbitTracking) TrackLookup(event LookupEvent) {
	event.Country = t.country
	t.queue.Add(event)
}
