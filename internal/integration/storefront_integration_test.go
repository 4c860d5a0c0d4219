//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
)

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5672")
	require.NoError(t, err)
	return "amqp://guest:guest@" + host + ":" + port.Port() + "/"
}

func TestPostgresCartRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := startPostgres(ctx, t)
	logger := zap.NewNop().Sugar()
	require.NoError(t, db.RunPostgresMigrations(dsn, logger))

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := kv.NewPostgresStore(pool, "browser-1")
	c := cart.Open(ctx, store)
	for _, name := range []string{"A", "B", "C"} {
		_, err := c.Add(ctx, name, 100)
		require.NoError(t, err)
	}
	_, err = c.RemoveAt(ctx, 1)
	require.NoError(t, err)

	reloaded := cart.Open(ctx, store)
	items := reloaded.Items()
	require.Len(t, items, 2)
	require.Equal(t, "A", items[0].Name)
	require.Equal(t, "C", items[1].Name)

	other := cart.Open(ctx, kv.NewPostgresStore(pool, "browser-2"))
	require.Zero(t, other.Count())
}

func TestRabbitPublisherDeliversCheckout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	url := startRabbitMQ(ctx, t)

	conn, err := events.Dial(url)
	require.NoError(t, err)
	defer conn.Close()

	pub, err := events.NewRabbitPublisher(conn, events.NewSequencer(kv.NewMemory()), zap.NewNop().Sugar())
	require.NoError(t, err)
	defer pub.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, events.CartCheckedOutRoutingKey, events.EventsExchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	snap := events.CheckoutSnapshot{
		CartID: "browser-1",
		Items:  []cart.Item{{ID: "a", Name: "Margherita", Price: 199, Quantity: 1}},
		Total:  199,
	}
	require.NoError(t, pub.PublishCartCheckedOut(ctx, snap, events.PublishMetadata{CorrelationID: "corr-1"}))

	select {
	case d := <-deliveries:
		require.Equal(t, amqp.Persistent, d.DeliveryMode)
		var env events.EventEnvelope
		require.NoError(t, json.Unmarshal(d.Body, &env))
		require.Equal(t, events.CartCheckedOutEventName, env.EventName)
		require.Equal(t, int64(1), env.Sequence)
		require.Equal(t, "corr-1", env.CorrelationID)
		require.Equal(t, "browser-1", env.Payload.CartID)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for CartCheckedOut")
	}
}
