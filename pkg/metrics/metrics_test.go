package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rvalid/pkg/metrics"
	"github.com/vango-dev/rvalid/pkg/validation"
)

func newCollector(t *testing.T, opts ...metrics.Option) (*metrics.Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := metrics.New(append([]metrics.Option{metrics.WithRegistry(reg)}, opts...)...)
	return c, reg
}

func TestRuleEvaluated(t *testing.T) {
	c, reg := newCollector(t)

	c.RuleEvaluated("required", true, time.Microsecond)
	c.RuleEvaluated("required", false, time.Microsecond)
	c.RuleEvaluated("required", false, time.Microsecond)
	c.RuleEvaluated("min", true, time.Millisecond)

	expected := `
# HELP rvalid_rule_evaluations_total Total number of validator calls by rule and result
# TYPE rvalid_rule_evaluations_total counter
rvalid_rule_evaluations_total{result="invalid",rule="required"} 2
rvalid_rule_evaluations_total{result="valid",rule="min"} 1
rvalid_rule_evaluations_total{result="valid",rule="required"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "rvalid_rule_evaluations_total"))

	count, err := testutil.GatherAndCount(reg, "rvalid_rule_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGroupEvaluated(t *testing.T) {
	c, reg := newCollector(t)

	c.GroupEvaluated(validation.ModePush, 4, 2)
	c.GroupEvaluated(validation.ModePush, 4, 1)
	c.GroupEvaluated(validation.ModePull, 3, 0)

	expected := `
# HELP rvalid_group_evaluations_total Total number of group error list recomputations
# TYPE rvalid_group_evaluations_total counter
rvalid_group_evaluations_total{mode="pull"} 1
rvalid_group_evaluations_total{mode="push"} 2
# HELP rvalid_group_invalid_members Number of invalid members in the most recently evaluated group
# TYPE rvalid_group_invalid_members gauge
rvalid_group_invalid_members{mode="pull"} 0
rvalid_group_invalid_members{mode="push"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"rvalid_group_evaluations_total", "rvalid_group_invalid_members"))
}

func TestOptions(t *testing.T) {
	c, reg := newCollector(t,
		metrics.WithNamespace("app"),
		metrics.WithSubsystem("forms"),
		metrics.WithConstLabels(prometheus.Labels{"env": "test"}),
		metrics.WithBuckets([]float64{0.001, 0.01}),
	)

	c.GroupEvaluated(validation.ModePull, 1, 1)

	expected := `
# HELP app_forms_group_members Number of members in the most recently evaluated group
# TYPE app_forms_group_members gauge
app_forms_group_members{env="test",mode="pull"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_forms_group_members"))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(metrics.WithRegistry(reg))

	assert.Panics(t, func() {
		metrics.New(metrics.WithRegistry(reg))
	})
}

func TestCollectorAsObserver(t *testing.T) {
	c, reg := newCollector(t)
	validation.SetObserver(c)
	t.Cleanup(func() { validation.SetObserver(nil) })

	name := validation.NewObservable("")
	require.NoError(t, validation.AddRule(name, validation.RuleContext{Rule: "required", Params: true}))
	age := validation.NewObservable(30)
	require.NoError(t, validation.AddRule(age, validation.RuleContext{Rule: "min", Params: 18}))

	g := validation.NewGroup(map[string]any{"name": name, "age": age}, validation.WithMode(validation.ModePull))
	assert.Equal(t, []string{"This field is required."}, g.Errors())

	expected := `
# HELP rvalid_group_invalid_members Number of invalid members in the most recently evaluated group
# TYPE rvalid_group_invalid_members gauge
rvalid_group_invalid_members{mode="pull"} 1
# HELP rvalid_rule_evaluations_total Total number of validator calls by rule and result
# TYPE rvalid_rule_evaluations_total counter
rvalid_rule_evaluations_total{result="invalid",rule="required"} 1
rvalid_rule_evaluations_total{result="valid",rule="min"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"rvalid_group_invalid_members", "rvalid_rule_evaluations_total"))
}

func TestServiceMetrics(t *testing.T) {
	c, reg := newCollector(t)

	c.RequestHandled("/v1/validate/{ruleset}", 200, time.Millisecond)
	c.RequestHandled("/v1/validate/{ruleset}", 404, time.Millisecond)
	c.RequestHandled("", 404, time.Millisecond)
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()
	c.FrameReceived("set")
	c.FrameReceived("set")
	c.FrameSent("state")

	expected := `
# HELP rvalid_http_requests_total Total number of HTTP requests by route and status code
# TYPE rvalid_http_requests_total counter
rvalid_http_requests_total{code="200",route="/v1/validate/{ruleset}"} 1
rvalid_http_requests_total{code="404",route="/v1/validate/{ruleset}"} 1
rvalid_http_requests_total{code="404",route="unmatched"} 1
# HELP rvalid_live_frames_total Total number of live session frames by direction and type
# TYPE rvalid_live_frames_total counter
rvalid_live_frames_total{direction="in",type="set"} 2
rvalid_live_frames_total{direction="out",type="state"} 1
# HELP rvalid_live_sessions Number of open live validation sessions
# TYPE rvalid_live_sessions gauge
rvalid_live_sessions 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"rvalid_http_requests_total", "rvalid_live_frames_total", "rvalid_live_sessions"))
}
