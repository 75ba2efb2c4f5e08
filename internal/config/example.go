package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Portfolio configuration file
# Values can be overridden by environment variables or CLI flags

# To-do snapshot file. Leave empty to keep the list in memory only.
# todo_file = "todo.json"

# Optional JSON schema for the to-do snapshot (the embedded one is used otherwise)
# schema_file = "todo.schema.json"

# Device registry (defaults to <user config dir>/portfolio/devices_data.json)
# devices_file = "devices_data.json"

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.portfolio"

# Seconds between device polls
poll_interval_seconds = 5

# Logging
log_level = "info"
log_format = "text"     # text, json or logfmt
log_timestamps = false
log_caller = false

[api]
# Readings endpoint polled by "portfolio devices watch"
url = ""
key = ""
# Listen address for "portfolio api"
listen = ":8080"
timeout_seconds = 10

[mqtt]
broker = "tcp://localhost:1883"
# AWS IoT: broker = "ssl://<endpoint>:8883" plus the device certificates
client_id = "portfolio"
topic = "iot/#"
qos = 0
# username = ""
# password = ""
# ca_file = "~/.portfolio/certs/AmazonRootCA1.pem"
# cert_file = "~/.portfolio/certs/device.pem.crt"
# key_file = "~/.portfolio/certs/private.pem.key"

[s3]
bucket = ""
folder = ""
region = "us-east-1"
# access_key = ""
# secret_key = ""
# endpoint = ""

[table]
name = "readings"
# service_url = "https://<account>.table.core.windows.net"
# connection_string = ""

[redis]
# Leave addr empty to disable the readings cache
addr = ""
db = 0
ttl_seconds = 5
`
}
