package tui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/converge/internal/reconcile"
)

func TestVerdict(t *testing.T) {
	require.Equal(t, "ok", Verdict(reconcile.Result{}))
	require.Equal(t, "changed", Verdict(reconcile.Result{Changed: true}))
	require.Equal(t, "failed", Verdict(reconcile.Result{Changed: true, Failed: true}))
}

func TestRenderPlain(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Render(buf, reconcile.Result{Changed: true, Message: "Changed: 1, Unchanged: 2"}, FormatPlain))
	require.Equal(t, "changed: Changed: 1, Unchanged: 2\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	res := reconcile.Result{
		Failed:         true,
		ChangedCount:   1,
		UnchangedCount: 1,
		Message:        "Error: boom",
		Units: []reconcile.UnitResult{
			{Target: "a", Status: reconcile.StatusUnchanged, Message: "Package already installed: a"},
		},
	}
	require.NoError(t, Render(buf, res, FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, true, decoded["failed"])
	require.Equal(t, false, decoded["changed"])
	require.Equal(t, "Error: boom", decoded["msg"])
	require.EqualValues(t, 1, decoded["changed_count"])
	require.EqualValues(t, 1, decoded["unchanged_count"])
	require.Len(t, decoded["units"], 1)
	require.NotContains(t, decoded, "Err")
}

func TestRenderStyledListsUnits(t *testing.T) {
	buf := &bytes.Buffer{}
	res := reconcile.Result{
		Changed:        true,
		ChangedCount:   1,
		UnchangedCount: 1,
		Message:        "Changed: 1, Unchanged: 1",
		Units: []reconcile.UnitResult{
			{Target: "foo", Status: reconcile.StatusChanged, Message: "Package installed: foo", Duration: 1500 * time.Millisecond},
			{Target: "bar", Status: reconcile.StatusUnchanged, Message: "Package already installed: bar"},
		},
	}
	require.NoError(t, Render(buf, res, FormatStyled))

	out := buf.String()
	require.Contains(t, out, "changed")
	require.Contains(t, out, "Package installed: foo")
	require.Contains(t, out, "1.5s")
	require.Contains(t, out, "bar")
	require.Contains(t, out, "1 changed, 1 unchanged")
}

func TestRenderStyledSingleUnit(t *testing.T) {
	buf := &bytes.Buffer{}
	res := reconcile.Result{
		UnchangedCount: 1,
		Message:        "Package already installed: foo",
		Units:          []reconcile.UnitResult{{Target: "foo", Status: reconcile.StatusUnchanged}},
	}
	require.NoError(t, Render(buf, res, FormatStyled))
	require.Contains(t, buf.String(), "ok")
	require.NotContains(t, buf.String(), "0 changed")
}
