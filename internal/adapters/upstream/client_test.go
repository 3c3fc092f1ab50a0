package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sama14b/orchestrator/internal/domain"
)

func TestAcquireDecodesResult(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data" {
			t.Errorf("expected /data, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"dataId":"d1","features":[1,2,3,4,5,6,7],"featureCount":7,"scalerVersion":"v1","createdAt":"2024-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewAcquireClient(srv.URL)
	res, err := c.Acquire(context.Background(), json.RawMessage(`{"window":"1h"}`))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if res.DataID != "d1" || res.FeatureCount != 7 || res.ScalerVersion != "v1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotBody["window"] != "1h" {
		t.Fatalf("payload not forwarded verbatim: %v", gotBody)
	}
}

func TestPredictSendsDerivedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("expected /predict, got %s", r.URL.Path)
		}
		var req domain.PredictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Meta.Source != "orchestrator" {
			t.Errorf("expected source orchestrator, got %q", req.Meta.Source)
		}
		_, _ = w.Write([]byte(`{"predictionId":"p1","prediction":0.87}`))
	}))
	defer srv.Close()

	c := NewPredictClient(srv.URL)
	res, err := c.Predict(context.Background(), &domain.PredictionRequest{
		Features: []float64{1, 2, 3, 4, 5, 6, 7},
		Meta:     domain.PredictionMeta{DataID: "d1", Source: "orchestrator"},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.PredictionID != "p1" {
		t.Fatalf("unexpected prediction id %q", res.PredictionID)
	}
	if string(res.Prediction) != "0.87" {
		t.Fatalf("expected opaque prediction 0.87, got %s", res.Prediction)
	}
}

func TestConnectionRefusedTagsOwnStage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens here anymore

	c := NewPredictClient(url)
	_, err := c.Predict(context.Background(), &domain.PredictionRequest{})
	var se *domain.StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Kind != domain.KindUnavailable {
		t.Fatalf("expected KindUnavailable, got %v", se.Kind)
	}
	if se.Stage != domain.StagePredict {
		t.Fatalf("expected stage predict2, got %s", se.Stage)
	}

	a := NewAcquireClient(url)
	_, err = a.Acquire(context.Background(), json.RawMessage(`{}`))
	if !errors.As(err, &se) || se.Kind != domain.KindUnavailable {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
	if se.Stage != domain.StageAcquire {
		t.Fatalf("expected stage acquire, got %s", se.Stage)
	}
}

func TestDeadlineClassifiedAsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewAcquireClient(srv.URL)
	_, err := c.Acquire(ctx, json.RawMessage(`{}`))
	var se *domain.StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Kind != domain.KindTimeout {
		t.Fatalf("expected KindTimeout, got %v", se.Kind)
	}
	if se.Stage != domain.StageAcquire {
		t.Fatalf("expected stage acquire, got %s", se.Stage)
	}
}

func TestNonSuccessStatusRelaysCodeAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"model offline"}`))
	}))
	defer srv.Close()

	c := NewPredictClient(srv.URL)
	_, err := c.Predict(context.Background(), &domain.PredictionRequest{})
	var se *domain.StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Kind != domain.KindUpstream {
		t.Fatalf("expected KindUpstream, got %v", se.Kind)
	}
	if se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", se.StatusCode)
	}
	if se.Detail != `{"error":"model offline"}` {
		t.Fatalf("expected upstream body relayed, got %q", se.Detail)
	}
}

func TestProbeReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewAcquireClient(srv.URL)
	body, err := c.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if body != `{"status":"ok"}` {
		t.Fatalf("unexpected probe body %q", body)
	}
}

func TestProbeNonOKIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	c := NewPredictClient(srv.URL)
	if _, err := c.Probe(context.Background()); err == nil {
		t.Fatalf("expected probe error on 503")
	}
}
