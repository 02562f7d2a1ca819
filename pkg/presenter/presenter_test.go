package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestErrorOutput(t *testing.T) {
	t.Run("with context", func(t *testing.T) {
		p, out, errOut := newTestPresenter()
		p.Error(errors.New("boom"), "packaging failed")
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "[ERROR] packaging failed: boom")
	})

	t.Run("without context", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(errors.New("boom"), "")
		assert.Contains(t, errOut.String(), "[ERROR] boom")
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(nil, "whatever")
		assert.Empty(t, errOut.String())
	})
}

func TestQuietSuppressesNonErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("done")
	p.Warning("careful")
	p.Info("fyi")
	p.Section("header")
	p.Separator()

	assert.Empty(t, out.String())

	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")
}

func TestMessages(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("packaged demo")
	p.Warning("skipping symlink")
	p.Info("3 skills validated")
	p.Section("Audit")

	got := out.String()
	assert.Contains(t, got, "✓ packaged demo")
	assert.Contains(t, got, "⚠ skipping symlink")
	assert.Contains(t, got, "3 skills validated")
	assert.Contains(t, got, "Audit\n-----")
}
