package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadtest_UnknownQuery(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"-q", "enormous"})
	assert.ErrorContains(t, cmd.Execute(), "invalid query type")
}

func TestLoadtest_MissingQueriesDir(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--queries-dir", t.TempDir()})
	assert.Error(t, cmd.Execute())
}

func TestLoadtest_Help(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "--connections")
}

func TestLoadtest_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"-u", srv.URL, "-c", "2", "-d", "1", "-q", "medium"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Running medium query benchmark")
	assert.Contains(t, out.String(), "Requests/sec:")
	assert.NotContains(t, out.String(), "Non-2xx")
}
