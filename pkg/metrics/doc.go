// Package metrics exports validation activity as Prometheus metrics.
//
// A Collector implements validation.Observer and also records the HTTP and
// live session activity of the validation service. Install it once at
// startup:
//
//	c := metrics.New(metrics.WithNamespace("myapp"))
//	validation.SetObserver(c)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected (default namespace "rvalid"):
//   - rvalid_rule_evaluations_total: validator calls by rule and result
//   - rvalid_rule_duration_seconds: validator call duration by rule
//   - rvalid_group_evaluations_total: group recomputations by mode
//   - rvalid_group_members: member count of the last evaluated group
//   - rvalid_group_invalid_members: invalid members of the last evaluated group
//   - rvalid_http_requests_total: HTTP requests by route and status code
//   - rvalid_http_request_duration_seconds: HTTP request duration by route
//   - rvalid_live_sessions: open live validation sessions
//   - rvalid_live_frames_total: live session frames by direction and type
package metrics
