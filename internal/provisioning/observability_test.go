package provisioning

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
)

// MockObserver is a test implementation of Observer that records events.
type MockObserver struct {
	events   []Event
	messages []string
	fields   map[string]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{fields: make(map[string]string)}
}

func (m *MockObserver) Printf(format string, _ ...interface{}) {
	m.messages = append(m.messages, format)
}

func (m *MockObserver) Event(event Event) {
	m.events = append(m.events, event)
}

func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{Type: EventProgress, Phase: phase})
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	return m
}

func (m *MockObserver) eventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// newTestContext returns a context with defaults for a fixed account and a
// recording observer.
func newTestContext(t *testing.T) (*Context, *MockObserver) {
	t.Helper()
	ctx := NewContext(context.Background(), config.Default("123456789012"), logr.Discard())
	obs := NewMockObserver()
	ctx.Observer = obs
	return ctx, obs
}

func captureLogger(buf *bytes.Buffer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		buf.WriteString(args)
		buf.WriteString("\n")
	}, funcr.Options{Verbosity: verbosity})
}

func TestLogObserver_Event(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(captureLogger(&buf, 0))

	obs.WithFields(map[string]string{"topology": "demo"}).Event(Event{
		Type:    EventPhaseStarted,
		Phase:   "network",
		Message: "starting",
	})

	out := buf.String()
	assert.Contains(t, out, `"msg"="starting"`)
	assert.Contains(t, out, `"phase"="network"`)
	assert.Contains(t, out, `"topology"="demo"`)
}

func TestLogObserver_DeclaredEventsAreVerbose(t *testing.T) {
	var quiet bytes.Buffer
	LogResourceDeclared(NewLogObserver(captureLogger(&quiet, 0)), "network", "AWS::EC2::VPC", "DevVPC")
	assert.Empty(t, quiet.String())

	var verbose bytes.Buffer
	LogResourceDeclared(NewLogObserver(captureLogger(&verbose, 1)), "network", "AWS::EC2::VPC", "DevVPC")
	assert.Contains(t, verbose.String(), `"resource"="DevVPC"`)
}

func TestLogObserver_FailuresAreErrors(t *testing.T) {
	var buf bytes.Buffer
	LogPhaseFailed(NewLogObserver(captureLogger(&buf, 0)), "cluster", errors.New("boom"))
	assert.Contains(t, buf.String(), "failed: boom")
	assert.Contains(t, buf.String(), `"error"=null`)
}

func TestLogObserver_WithFieldsDoesNotMutateParent(t *testing.T) {
	parent := NewLogObserver(logr.Discard())
	child := parent.WithFields(map[string]string{"a": "1"}).(*LogObserver)

	assert.Empty(t, parent.contextFields)
	assert.Equal(t, "1", child.contextFields["a"])
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, 0)
	logger.WithName("emrdebug").Info("hello", "k", "v")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "emrdebug: "), line)
	assert.Contains(t, line, `"k"="v"`)
}

func TestNewTestContext(t *testing.T) {
	ctx, _ := newTestContext(t)
	require.NotNil(t, ctx.State.AuthMap)
	assert.Equal(t, "aws", ctx.Partition())
	assert.Equal(t, 0, ctx.Template.Len())
}
