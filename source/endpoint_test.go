package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/core"
)

func TestEndpointLoad_JSONArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["first fact", "second fact", {"id": 3, "text": "third"}]`))
	}))
	defer server.Close()

	docs, err := NewEndpoint(server.URL).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "first fact", docs[0].Content)
	assert.Equal(t, "0", docs[0].Metadata[core.MetaIndex])
	assert.Equal(t, "second fact", docs[1].Content)
	assert.Equal(t, "1", docs[1].Metadata[core.MetaIndex])
	assert.JSONEq(t, `{"id": 3, "text": "third"}`, docs[2].Content)
	assert.Equal(t, server.URL, docs[2].Metadata[core.MetaSource])
}

func TestEndpointLoad_JSONObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title": "note", "body": "a single record"}`))
	}))
	defer server.Close()

	docs, err := NewEndpoint(server.URL).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"title": "note", "body": "a single record"}`, docs[0].Content)
	assert.Equal(t, server.URL, docs[0].Metadata[core.MetaSource])
}

func TestEndpointLoad_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not an API</body></html>"))
	}))
	defer server.Close()

	docs, err := NewEndpoint(server.URL).Load(context.Background())
	require.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.Nil(t, docs)
}

func TestEndpointLoad_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	docs, err := NewEndpoint(server.URL).Load(context.Background())
	require.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.Nil(t, docs)
}

func TestEndpointLoad_Unreachable(t *testing.T) {
	docs, err := NewEndpoint("http://127.0.0.1:1/nothing").Load(context.Background())
	require.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.Nil(t, docs)
}

func TestEndpointLoad_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	docs, err := NewEndpoint(server.URL).Load(context.Background())
	require.ErrorIs(t, err, core.ErrSourceUnavailable,
		"an empty body is not decodable JSON")
	assert.Nil(t, docs)
}

func TestEndpointLoad_BlankJSONString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`"   "`))
	}))
	defer server.Close()

	docs, err := NewEndpoint(server.URL).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
