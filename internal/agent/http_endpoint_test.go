package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPEndpoint_FetchMenus(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":[{"id":7,"name":"Upma","price":25,"is_vegetarian":true}]}`))
	}))
	defer srv.Close()

	ep := NewHTTPEndpoint(srv.URL+"/api/v1/", time.Second)
	ctx := WithBearerToken(context.Background(), "tok123")
	records, err := ep.FetchMenus(ctx, ParamSet{"meal_type": "breakfast", "date": "2026-10-15"})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/menus", gotPath)
	assert.Equal(t, "date=2026-10-15&meal_type=breakfast", gotQuery)
	assert.Equal(t, "Bearer tok123", gotAuth)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].ID())
	assert.Equal(t, "Upma", records[0].String("name"))
}

func TestHTTPEndpoint_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
		{"data not a list", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":200,"data":{"id":1}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewHTTPEndpoint(srv.URL, time.Second).FetchFAQs(context.Background(), ParamSet{})
			assert.Error(t, err)
		})
	}
}

func TestHTTPEndpoint_TimeoutSurfacesAsApology(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a := New(NewHTTPEndpoint(srv.URL, 0), fixedExtractor(), 50*time.Millisecond)
	reply := a.Process(context.Background(), "bus timings")
	assert.Equal(t, ReplyError, reply.Type)
	assert.Equal(t, Apology(IntentBus), reply.Response)
}
