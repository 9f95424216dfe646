// Command range-monitor watches numeric readings on MQTT or Kafka topics and
// notifies when a topic leaves or re-enters its configured range.
package main

import "github.com/oshokin/range-monitor/cmd/range-monitor/cmd"

func main() {
	cmd.Execute()
}
