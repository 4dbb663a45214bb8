// Package config handles loading and validating the Epicure publisher configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with EPICURE_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Broker credentials and the InfluxDB token should be set via environment
//     variables (EPICURE_MQTT_USERNAME, EPICURE_MQTT_PASSWORD, EPICURE_INFLUXDB_TOKEN)
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(config.ResolvePath(flagPath))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.MQTT.Broker.Host)
package config
