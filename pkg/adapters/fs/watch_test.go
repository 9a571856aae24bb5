package fs

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) notify(_ *core.Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func TestSession_MergesAfterEditorSave(t *testing.T) {
	ref := setupMod(t, "ExampleMod", exampleYAML)
	rec := &recorder{}

	session := NewSession(NewBridge(), rec.notify)
	session.Settle = 50 * time.Millisecond
	ready := make(chan struct{})
	session.Ready = func() { close(ready) }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx, ref) }()

	select {
	case <-ready:
	case <-ctx.Done():
		t.Fatal("session never became ready")
	}
	assert.FileExists(t, ref.ArtifactPath())

	edited := `{"Name": "Edited", "Version": "1.3.0", "Dependencies": []}`
	require.NoError(t, os.WriteFile(ref.ArtifactPath(), []byte(edited), 0644))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("session did not finish after the artifact was saved")
	}

	assert.Equal(t, 2, rec.calls(), "forward and reverse should both be reported")
	assert.NoFileExists(t, ref.ArtifactPath())

	v := parseFile(t, ref.SourcePath(), NewYAMLSerializer(false))
	name, _ := v.(*core.Map).Get("Name")
	assert.Equal(t, "Edited", name)
}

func TestSession_CancelLeavesArtifact(t *testing.T) {
	ref := setupMod(t, "ExampleMod", exampleYAML)

	session := NewSession(NewBridge(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	session.Ready = cancel

	err := session.Run(ctx, ref)
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, ref.ArtifactPath())

	data, err := os.ReadFile(ref.SourcePath())
	require.NoError(t, err)
	assert.Equal(t, exampleYAML, string(data))
}

func TestSession_ForwardFailureStops(t *testing.T) {
	ref := setupMod(t, "Empty", "")
	rec := &recorder{}

	err := NewSession(NewBridge(), rec.notify).Run(context.Background(), ref)
	assert.Equal(t, core.MissingSourceFile, core.KindOf(err))
	assert.Equal(t, 1, rec.calls())
}
