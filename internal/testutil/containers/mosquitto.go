//go:build integration

//nolint:misspell // Mosquitto is the official Eclipse project name
package containers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const mosquittoConfig = `listener 1883
allow_anonymous true
persistence false
`

// Mosquitto is a running Eclipse Mosquitto broker accepting anonymous
// clients on 1883.
type Mosquitto struct {
	container testcontainers.Container
	brokerURL string
}

// StartMosquitto starts a broker from eclipse-mosquitto:<tag>; tag defaults
// to 2.0.
func StartMosquitto(ctx context.Context, tag string) (*Mosquitto, error) {
	if tag == "" {
		tag = "2.0"
	}
	req := testcontainers.ContainerRequest{
		Image:        "eclipse-mosquitto:" + tag,
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto/config/test.conf"},
		Files: []testcontainers.ContainerFile{{
			Reader:            strings.NewReader(mosquittoConfig),
			ContainerFilePath: "/mosquitto/config/test.conf",
			FileMode:          0o644,
		}},
		WaitingFor: wait.ForListeningPort("1883/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Mosquitto container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to resolve broker endpoint: %w", err)
	}
	return &Mosquitto{container: container, brokerURL: endpoint}, nil
}

// BrokerURL returns the tcp:// address clients connect to.
func (m *Mosquitto) BrokerURL() string {
	return m.brokerURL
}

// Terminate removes the container.
func (m *Mosquitto) Terminate(ctx context.Context) error {
	if err := m.container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate Mosquitto container: %w", err)
	}
	return nil
}
