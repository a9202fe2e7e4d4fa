package sheets

import "context"

// ReportWriter is the export surface the CLI depends on. Allows mocking
// the Google Sheets backend in tests.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	// WriteFn can be set by tests to control behavior
	WriteFn func(ctx context.Context, report *Report) error

	// Call tracking
	WriteCalls []*Report
}

// NewMockWriter creates a new mock report writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{WriteCalls: []*Report{}}
}

// Write implements ReportWriter.Write.
func (m *MockWriter) Write(ctx context.Context, report *Report) error {
	m.WriteCalls = append(m.WriteCalls, report)

	if m.WriteFn != nil {
		return m.WriteFn(ctx, report)
	}
	return nil
}

// Reset clears all call tracking.
func (m *MockWriter) Reset() {
	m.WriteCalls = []*Report{}
}

// Ensure implementations satisfy ReportWriter.
var (
	_ ReportWriter = (*Writer)(nil)
	_ ReportWriter = (*MockWriter)(nil)
)
