package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainers holds the containers backing an integration run.
type TestContainers struct {
	Network     *testcontainers.DockerNetwork
	DBContainer testcontainers.Container

	// Host-mapped connection values for the test process.
	DBHost string
	DBPort string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateDatabaseContainer starts a MariaDB container and provisions the
// gather database and service user. Container image and credentials come
// from the environment with defaults suitable for CI.
func CreateDatabaseContainer(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw

	tcpDbPort, err := nat.NewPort("tcp", getEnvDefault("DB_PORT", "3306"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnvDefault("DB_IMAGE", "mariadb:11"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": getEnvDefault("DB_ROOT_PASSWORD", "root"),
				"MYSQL_DATABASE":      getEnvDefault("DB_DATABASE", "gather"),
				"MYSQL_USER":          getEnvDefault("DB_USER", "gather"),
				"MYSQL_PASSWORD":      getEnvDefault("DB_PASSWORD", "gather"),
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start MariaDB")
	}
	testContainers.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	testContainers.DBHost = dbHost
	testContainers.DBPort = dbPort.Port()

	if err := performMySQLInit(t, testContainers); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
	}

	logMessage(t, "MariaDB testcontainer started at %s:%s", dbHost, dbPort.Port())
	return testContainers, nil
}

// DSN returns the service-user connection string for the provisioned
// database, in the form the mysql driver and GORM expect.
func (tc *TestContainers) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		getEnvDefault("DB_USER", "gather"),
		getEnvDefault("DB_PASSWORD", "gather"),
		tc.DBHost, tc.DBPort,
		getEnvDefault("DB_DATABASE", "gather"))
}

func performMySQLInit(t *testing.T, tc *TestContainers) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/",
		getEnvDefault("DB_ROOT_PASSWORD", "root"), tc.DBHost, tc.DBPort))
	if err != nil {
		exitWithError(t, err, "Failed to connect to MariaDB for setup")
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		exitWithError(t, err, "MariaDB not ready after 30 seconds")
	}

	database := getEnvDefault("DB_DATABASE", "gather")
	user := getEnvDefault("DB_USER", "gather")

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)); err != nil {
		return fmt.Errorf("failed to create %s: %w", database, err)
	}
	if _, err := db.Exec(fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'%%'", database, user)); err != nil {
		return fmt.Errorf("failed to grant privileges on %s: %w", database, err)
	}
	if _, err := db.Exec("FLUSH PRIVILEGES"); err != nil {
		return fmt.Errorf("failed to flush privileges: %w", err)
	}
	return nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
