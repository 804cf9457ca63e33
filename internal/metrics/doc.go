// Package metrics records run statistics with the Prometheus client and
// writes them as a textfile for node_exporter. mediasort is a one-shot CLI,
// so nothing is served over HTTP.
package metrics
