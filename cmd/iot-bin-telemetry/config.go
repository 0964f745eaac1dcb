package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/events"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/telemetry"
)

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort
	enableTracing
	configurationFile

	dbDriver
	sqlitePath
	dbHost
	dbPort
	dbName
	dbUser
	dbPassword
	dbSSLMode

	webhookUsername
	webhookPassword

	mqttBroker
	mqttTopic
	mqttClientID
	mqttUsername
	mqttPassword

	displayTimezoneOffset
)

func defaultFlags() flagMap {
	return flagMap{
		listenAddress:     "0.0.0.0",
		servicePort:       "8080",
		enableTracing:     "true",
		configurationFile: "/opt/diwise/config/config.yaml",

		dbDriver:   "sqlite",
		sqlitePath: "data/iot-bin-telemetry.db",
		dbHost:     "",
		dbPort:     "5432",
		dbName:     "diwise",
		dbUser:     "",
		dbPassword: "",
		dbSSLMode:  "disable",

		webhookUsername: "myuser",
		webhookPassword: "mypassword",

		mqttBroker:   "",
		mqttTopic:    "v3/+/devices/+/up",
		mqttClientID: "iot-bin-telemetry",
		mqttUsername: "",
		mqttPassword: "",

		displayTimezoneOffset: "8",
	}
}

func parseExternalConfig(flags flagMap) flagMap {
	flags = applyEnvironment(flags)

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "policy and notification configuration file", apply(configurationFile))
	flag.Func("db", "database driver, sqlite or postgres", apply(dbDriver))
	flag.Func("sqlite", "path to the sqlite database file", apply(sqlitePath))
	flag.Func("port", "port to serve the api on", apply(servicePort))
	flag.Parse()

	return flags
}

// applyEnvironment lets environment variables override the defaults
func applyEnvironment(flags flagMap) flagMap {
	envOrDef := func(key, def string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return def
	}

	flags[listenAddress] = envOrDef("LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef("SERVICE_PORT", flags[servicePort])
	flags[enableTracing] = envOrDef("ENABLE_TRACING", flags[enableTracing])
	flags[configurationFile] = envOrDef("CONFIGURATION_FILE", flags[configurationFile])

	flags[dbDriver] = envOrDef("DB_DRIVER", flags[dbDriver])
	flags[sqlitePath] = envOrDef("SQLITE_PATH", flags[sqlitePath])
	flags[dbHost] = envOrDef("POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef("POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef("POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef("POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef("POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef("POSTGRES_SSLMODE", flags[dbSSLMode])

	flags[webhookUsername] = envOrDef("TTN_WEBHOOK_USERNAME", flags[webhookUsername])
	flags[webhookPassword] = envOrDef("TTN_WEBHOOK_PASSWORD", flags[webhookPassword])

	flags[mqttBroker] = envOrDef("MQTT_BROKER", flags[mqttBroker])
	flags[mqttTopic] = envOrDef("MQTT_TOPIC", flags[mqttTopic])
	flags[mqttClientID] = envOrDef("MQTT_CLIENT_ID", flags[mqttClientID])
	flags[mqttUsername] = envOrDef("MQTT_USERNAME", flags[mqttUsername])
	flags[mqttPassword] = envOrDef("MQTT_PASSWORD", flags[mqttPassword])

	flags[displayTimezoneOffset] = envOrDef("DISPLAY_TIMEZONE_OFFSET", flags[displayTimezoneOffset])

	return flags
}

// loadConfigurationFile reads the policy and notification sections of the
// configuration file. A missing file yields the default policy and no subscribers.
func loadConfigurationFile(path string) (telemetry.Config, *events.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return telemetry.DefaultConfig(), nil, nil
		}
		return telemetry.Config{}, nil, err
	}

	policy, err := telemetry.LoadConfiguration(bytes.NewReader(b))
	if err != nil {
		return telemetry.Config{}, nil, fmt.Errorf("invalid policy: %w", err)
	}

	notifications, err := events.LoadConfiguration(bytes.NewReader(b))
	if err != nil {
		return telemetry.Config{}, nil, fmt.Errorf("invalid notifications: %w", err)
	}

	return policy, notifications, nil
}
