package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/scheduler"
)

type fakeSource struct {
	sched     *scheduler.Scheduler
	global    *env.Scope
	literals  []string
	recording bool
}

func (f *fakeSource) Scheduler() *scheduler.Scheduler { return f.sched }
func (f *fakeSource) GlobalScope() *env.Scope         { return f.global }
func (f *fakeSource) LiteralIDs() []string            { return f.literals }
func (f *fakeSource) Recording() bool                 { return f.recording }

func TestStatusReportsRecordingFlagWithNoScheduler(t *testing.T) {
	src := &fakeSource{global: env.NewScope(nil, ":global", env.Body), recording: true}
	srv := New(src)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, w.Code)

	var status Status
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(status.Recording)
	assert.Equal(0, status.Pending)
}

func TestScopesReturnsNestedTree(t *testing.T) {
	global := env.NewScope(nil, ":global", env.Body)
	child := env.NewScope(global, "abc", env.Signature)
	child.ID = "abc:0"
	global.AddChildScope(child)

	srv := New(&fakeSource{global: global})

	req := httptest.NewRequest(http.MethodGet, "/scopes", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	var node ScopeNode
	assert := assert.New(t)
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &node))
	assert.Len(node.Children, 1)
	assert.Equal("abc:0", node.Children[0].ID)
}

func TestLiteralsReturnsSourceIDs(t *testing.T) {
	srv := New(&fakeSource{
		global:   env.NewScope(nil, ":global", env.Body),
		literals: []string{"a", "b"},
	})

	req := httptest.NewRequest(http.MethodGet, "/literals", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	var ids []string
	assert := assert.New(t)
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &ids))
	assert.ElementsMatch([]string{"a", "b"}, ids)
}
