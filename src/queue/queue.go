// Package queue carries fact-check poll jobs from the API to the
// checker worker over RabbitMQ, so job completion is decoupled from
// any single inbound request's lifetime.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const pollQueue = "verity.factcheck.poll"

// PollJob asks the checker to drive one submitted job to termination.
type PollJob struct {
	JobID     string `json:"job_id"`
	ArticleID uint64 `json:"article_id"`
}

type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func Connect(url string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	q, err := ch.QueueDeclare(pollQueue, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %s: %w", pollQueue, err)
	}
	return &Queue{conn: conn, channel: ch, queue: q}, nil
}

func (q *Queue) Close() {
	q.channel.Close()
	q.conn.Close()
}

func (q *Queue) PublishPoll(ctx context.Context, job PollJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return q.channel.PublishWithContext(ctx, "", q.queue.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// ConsumePoll delivers poll jobs to handler until the channel closes.
// Each delivery runs in its own goroutine (a poll loop can take
// minutes) and is acked only after the handler returns; a handler
// error requeues the delivery once.
func (q *Queue) ConsumePoll(handler func(PollJob) error) error {
	msgs, err := q.channel.Consume(q.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}
	for d := range msgs {
		var job PollJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			log.Printf("queue: drop malformed poll job: %v", err)
			d.Nack(false, false)
			continue
		}
		go func(d amqp.Delivery, job PollJob) {
			if err := handler(job); err != nil {
				log.Printf("queue: poll job %s: %v", job.JobID, err)
				d.Nack(false, !d.Redelivered)
				return
			}
			d.Ack(false)
		}(d, job)
	}
	return nil
}
