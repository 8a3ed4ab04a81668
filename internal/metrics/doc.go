// Package metrics provides observability hooks for object access and remote
// operations.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can
// be switched on without touching call sites:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	repo, err := repository.Open(path, repository.WithRecorder(recorder))
//
// The CLI activates Prometheus with --metrics-textfile, writing the registry
// at exit with WriteTextfile. Long running commands can also serve it over
// HTTP through HTTPHandler.
package metrics
