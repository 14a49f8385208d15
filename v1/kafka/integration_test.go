package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/avroframe/v1/decoder"
	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/record"
	"github.com/Aleph-Alpha/avroframe/v1/schema_registry"
	"github.com/Aleph-Alpha/avroframe/v1/wire"
)

// TestConsumerEndToEnd produces framed records to a real broker and checks
// that only the valid ones reach the handler while every offset is committed.
func TestConsumerEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	broker, containerInstance := initializeKafka(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"schema": `{"type":"record","name":"Person","fields":[{"name":"name","type":"string"},{"name":"age","type":"int"}]}`,
		})
	}))
	defer registry.Close()

	const topic = "avroframe-e2e"
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}
	defer writer.Close()

	values := [][]byte{
		wire.Encode(0xFF, 7, 4, []byte{0x06, 'b', 'o', 'b', 0x3c}),
		{0x00, 0x01, 0x02},
		wire.Encode(0xFF, 7, 4, []byte{0x04, 'a', 'l', 0x02}),
	}
	msgs := make([]kafka.Message, len(values))
	for i, v := range values {
		msgs[i] = kafka.Message{Key: []byte(strconv.Itoa(i)), Value: v}
	}

	require.Eventually(t, func() bool {
		return writer.WriteMessages(ctx, msgs...) == nil
	}, 60*time.Second, time.Second, "could not produce test messages")

	log := logger.NewNop()
	client, err := schema_registry.NewClient(schema_registry.Config{URL: registry.URL + "/ids/"})
	require.NoError(t, err)

	cfg := decoder.DefaultConfig()
	cfg.RegistryURL = client.URL()
	dec := decoder.NewDecoder(cfg, schema_registry.NewCache(client), log)

	consumer, err := NewConsumer(Config{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: "avroframe-e2e",
		Workers: 2,
		MaxWait: 100 * time.Millisecond,
	}, dec, log)
	require.NoError(t, err)
	defer consumer.Close()

	runCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	var (
		mu  sync.Mutex
		got []record.Record
	)
	err = consumer.Run(runCtx, func(_ context.Context, msg kafka.Message, rec record.Record) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, rec)
		if msg.Offset == int64(len(values)-1) {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0]["name"])
	assert.Equal(t, int32(30), got[0]["age"])
	assert.Equal(t, uint32(7), got[0].SchemaID())
	assert.Equal(t, "al", got[1]["name"])
}

func initializeKafka(ctx context.Context, t *testing.T) (string, testcontainers.Container) {
	hostPort, err := getFreePort()
	require.NoError(t, err)

	containerInstance, err := createKafkaContainer(ctx, hostPort)
	require.NoError(t, err)

	broker := net.JoinHostPort("localhost", hostPort)
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", broker, 2*time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 60*time.Second, 500*time.Millisecond, "Kafka port not ready")

	return broker, containerInstance
}

// createKafkaContainer starts a single KRaft node whose advertised listener
// is the fixed host port, so clients outside the container can reach it.
func createKafkaContainer(ctx context.Context, hostPort string) (testcontainers.Container, error) {
	portBindings := nat.PortMap{
		"9092/tcp": []nat.PortBinding{{HostPort: hostPort}},
	}

	req := testcontainers.ContainerRequest{
		Image:        "apache/kafka:3.8.0",
		ExposedPorts: []string{"9092/tcp"},
		Env: map[string]string{
			"KAFKA_NODE_ID":                                  "1",
			"KAFKA_PROCESS_ROLES":                            "broker,controller",
			"KAFKA_LISTENERS":                                "PLAINTEXT://0.0.0.0:9092,CONTROLLER://0.0.0.0:9093",
			"KAFKA_ADVERTISED_LISTENERS":                     "PLAINTEXT://localhost:" + hostPort,
			"KAFKA_CONTROLLER_LISTENER_NAMES":                "CONTROLLER",
			"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP":           "CONTROLLER:PLAINTEXT,PLAINTEXT:PLAINTEXT",
			"KAFKA_CONTROLLER_QUORUM_VOTERS":                 "1@localhost:9093",
			"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR":         "1",
			"KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR": "1",
			"KAFKA_TRANSACTION_STATE_LOG_MIN_ISR":            "1",
			"KAFKA_GROUP_INITIAL_REBALANCE_DELAY_MS":         "0",
			"KAFKA_NUM_PARTITIONS":                           "1",
			"KAFKA_AUTO_CREATE_TOPICS_ENABLE":                "true",
		},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9092/tcp").WithStartupTimeout(60*time.Second),
			wait.ForLog("Kafka Server started").WithStartupTimeout(60*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, lastErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if lastErr == nil {
			return containerInstance, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("failed to start Kafka container after retries: %w", lastErr)
}

func getFreePort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}
