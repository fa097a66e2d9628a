package instance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/version"
)

// Mock processor for testing
type mockProcessor struct {
	ops     []string
	fail    error
	invoked string
}

func (m *mockProcessor) Operations() []string {
	return m.ops
}

func (m *mockProcessor) Invoke(_ context.Context, operation string, args map[string]any) (any, error) {
	m.invoked = operation
	if m.fail != nil {
		return nil, m.fail
	}
	return map[string]any{"operation": operation, "args": len(args)}, nil
}

func TestNew(t *testing.T) {
	proc := &mockProcessor{ops: []string{"parse"}}
	inst := New("text", "primary", version.MustParse("1.2.0"), "", proc)

	require.NotNil(t, inst)
	assert.NotEmpty(t, inst.ID())
	assert.Equal(t, "text", inst.Kind())
	assert.Equal(t, "1.2.0", inst.Version().String())

	// Each instance gets its own identity.
	other := New("text", "secondary", version.Version{}, "", proc)
	assert.NotEqual(t, inst.ID(), other.ID())
}

func TestInfo(t *testing.T) {
	proc := &mockProcessor{ops: []string{"parse", "classify"}}
	inst := New("intent", "router", version.MustParse("2.0.1"), "oci://ghcr.io/nvidia/intent:2.0.1", proc)

	info := inst.Info()
	assert.Equal(t, inst.ID(), info.ID)
	assert.Equal(t, "intent", info.Kind)
	assert.Equal(t, "router", info.Name)
	assert.Equal(t, "2.0.1", info.Version)
	assert.Equal(t, "oci://ghcr.io/nvidia/intent:2.0.1", info.Artifact)
	assert.Equal(t, []string{"parse", "classify"}, info.Operations)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestInfoOmitsZeroVersion(t *testing.T) {
	inst := New("text", "", version.Version{}, "", &mockProcessor{ops: []string{"parse"}})
	assert.Empty(t, inst.Info().Version)
}

func TestInvoke(t *testing.T) {
	proc := &mockProcessor{ops: []string{"parse"}}
	inst := New("text", "", version.Version{}, "", proc)

	out, err := inst.Invoke(context.Background(), "parse", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "parse", proc.invoked)
	assert.NotNil(t, out)
}

func TestInvokeUnknownOperation(t *testing.T) {
	proc := &mockProcessor{ops: []string{"parse"}}
	inst := New("text", "", version.Version{}, "", proc)

	_, err := inst.Invoke(context.Background(), "transmogrify", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvocation, apperrors.CodeOf(err))

	// The processor itself must not have been called.
	assert.Empty(t, proc.invoked)
}

func TestInvokeProcessorFailure(t *testing.T) {
	cause := errors.New("tokenizer blew up")
	proc := &mockProcessor{ops: []string{"parse"}, fail: cause}
	inst := New("text", "", version.Version{}, "", proc)

	_, err := inst.Invoke(context.Background(), "parse", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvocation, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, cause)

	// A failed invocation leaves the instance usable.
	proc.fail = nil
	_, err = inst.Invoke(context.Background(), "parse", nil)
	assert.NoError(t, err)
}
