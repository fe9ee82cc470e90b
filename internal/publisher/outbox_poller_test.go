package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_inventory/internal/repository"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type MockRepository struct {
	OutboxEvents []*repository.OutboxEvent
	FetchErr     error
	MarkErr      error
	ProcessedIDs []int64
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	ev := m.OutboxEvents
	m.OutboxEvents = nil
	return ev, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

// fakeWriter records messages and fails for keys listed in failKeys
type fakeWriter struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	failKeys map[string]bool
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range msgs {
		if w.failKeys[string(m.Key)] {
			return errors.New("broker unavailable")
		}
		w.messages = append(w.messages, m)
	}
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func event(id int64, aggregate, eventType string) *repository.OutboxEvent {
	return &repository.OutboxEvent{
		ID:          id,
		EventID:     "evt-" + aggregate,
		AggregateId: aggregate,
		EventType:   eventType,
		Payload:     json.RawMessage(`{"order_id":` + aggregate + `}`),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*repository.OutboxEvent{
		event(1, "1001", repository.EventOrderPlaced),
		event(2, "1002", repository.EventOrderPlaced),
	}}
	w := &fakeWriter{}
	poller := &OutboxPoller{eventTick: time.Second, repo: repo, writer: w}

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, w.messages, 2)
	assert.Equal(t, "1001", string(w.messages[0].Key))
	assert.Equal(t, "event_type", w.messages[0].Headers[0].Key)
	assert.Equal(t, repository.EventOrderPlaced, string(w.messages[0].Headers[0].Value))
	assert.Equal(t, []int64{1, 2}, repo.ProcessedIDs)
}

func TestProcessUnpublishedEvents_FailedPublishIsRetried(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*repository.OutboxEvent{
		event(1, "1001", repository.EventOrderPlaced),
		event(2, "1002", repository.EventOrderPlaced),
	}}
	w := &fakeWriter{failKeys: map[string]bool{"1001": true}}
	poller := &OutboxPoller{eventTick: time.Second, repo: repo, writer: w}

	poller.processUnpublishedEvents(context.Background())

	// the failed event stays unprocessed, the next one still goes out
	assert.Equal(t, []int64{2}, repo.ProcessedIDs)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "1002", string(w.messages[0].Key))
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	repo := &MockRepository{FetchErr: errors.New("database connection error")}
	w := &fakeWriter{}
	poller := &OutboxPoller{eventTick: time.Second, repo: repo, writer: w}

	poller.processUnpublishedEvents(context.Background())
	assert.Empty(t, w.messages)
}

func TestProcessUnpublishedEvents_MarkErrorKeepsGoing(t *testing.T) {
	repo := &MockRepository{
		OutboxEvents: []*repository.OutboxEvent{event(1, "1001", repository.EventOrderPlaced)},
		MarkErr:      errors.New("locked"),
	}
	w := &fakeWriter{}
	poller := &OutboxPoller{eventTick: time.Second, repo: repo, writer: w}

	poller.processUnpublishedEvents(context.Background())
	assert.Len(t, w.messages, 1)
	assert.Empty(t, repo.ProcessedIDs)
}

func TestOutboxPoller_DrainsRepository(t *testing.T) {
	creds := &repository.Credentials{Driver: repository.DriverSQLite, Path: ":memory:"}
	repo, err := repository.NewRepository(creds)
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations(creds))
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.AddOutboxEvent(ctx, "1001", repository.EventOrderPlaced, []byte(`{"order_id":1001}`)))
	require.NoError(t, repo.AddOutboxEvent(ctx, "2", repository.EventProductRestocked, []byte(`{"product_id":"2"}`)))

	w := &fakeWriter{}
	poller := &OutboxPoller{eventTick: 10 * time.Millisecond, repo: repo, writer: w}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		poller.Run(runCtx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		events, err := repo.GetUnprocessedEvents(ctx, 10)
		return err == nil && len(events) == 0
	}, 2*time.Second, 20*time.Millisecond)
	cancel()
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.messages, 2)
	assert.Equal(t, repository.EventProductRestocked, string(w.messages[1].Headers[0].Value))

	require.NoError(t, poller.Close())
	assert.True(t, w.closed)
}

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	controllerConn, err := kafkaGo.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}
	brokerAddr := setupKafka(t)
	createTopic(t, brokerAddr, Topic)
	time.Sleep(5 * time.Second)

	repo := &MockRepository{OutboxEvents: []*repository.OutboxEvent{event(1, "1001", repository.EventOrderPlaced)}}
	writer := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokerAddr),
		Topic:        Topic,
		Balancer:     &kafkaGo.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	poller := &OutboxPoller{eventTick: time.Second, repo: repo, writer: writer}
	defer poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    Topic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1001", string(msg.Key))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.EqualValues(t, 1001, payload["order_id"])
	assert.Eventually(t, func() bool { return len(repo.ProcessedIDs) == 1 }, 5*time.Second, 100*time.Millisecond)
}
