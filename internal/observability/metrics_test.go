package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRegistered(t *testing.T) {
	EnsureRegistered()
	require.NotNil(t, metricsInst)
	require.NotNil(t, registry)

	// Idempotent: the same instance survives repeated calls.
	first := metricsInst
	EnsureRegistered()
	assert.Same(t, first, metricsInst)
}

func TestRecorders(t *testing.T) {
	RecordAgentRun("final", 120*time.Millisecond)
	RecordAgentRun("exhausted", 2*time.Second)
	RecordModelCall("openai", 300*time.Millisecond, true)
	RecordModelCall("anthropic", 150*time.Millisecond, false)
	RecordToolInvocation("echo", 10*time.Millisecond, true)
	RecordParseFailure("FormatError")
	RecordCorrection("unknown_tool")

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, recorder.Code)

	body := recorder.Body.String()
	assert.Contains(t, body, `agent_run_total{status="final"} 1`)
	assert.Contains(t, body, `agent_run_total{status="exhausted"} 1`)
	assert.Contains(t, body, `model_call_total{provider="openai",status="success"} 1`)
	assert.Contains(t, body, `model_call_total{provider="anthropic",status="error"} 1`)
	assert.Contains(t, body, `tool_invocation_total{status="success",tool="echo"} 1`)
	assert.Contains(t, body, `parse_failure_total{kind="FormatError"} 1`)
	assert.Contains(t, body, `correction_total{reason="unknown_tool"} 1`)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "success", statusLabel(true))
	assert.Equal(t, "error", statusLabel(false))
}
