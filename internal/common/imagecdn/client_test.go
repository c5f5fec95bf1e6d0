package imagecdn

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDisabledClient(t *testing.T) {
	client := New(Config{})

	if client.Enabled() {
		t.Fatal("client without cloud name should be disabled")
	}
	if _, err := client.Upload(context.Background(), []byte("x"), "events"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("upload err = %v, want ErrDisabled", err)
	}
	if err := client.Destroy(context.Background(), "events/img-1"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("destroy err = %v, want ErrDisabled", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
}

func TestSignSortsParams(t *testing.T) {
	client := New(Config{CloudName: "demo", APISecret: "s3cr3t"})

	got := client.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "events",
	})

	sum := sha1.Sum([]byte("folder=events&timestamp=1700000000s3cr3t"))
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("signature = %s, want %s", got, want)
	}
}

func TestUploadParsesResponse(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("folder") != "events" {
			t.Errorf("folder = %q", r.FormValue("folder"))
		}
		if r.FormValue("api_key") != "key-1" {
			t.Errorf("api_key = %q", r.FormValue("api_key"))
		}
		if r.FormValue("signature") == "" {
			t.Error("signature missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/events/img-1.jpg","public_id":"events/img-1"}`))
	}))
	defer server.Close()

	client := New(Config{
		CloudName: "demo",
		APIKey:    "key-1",
		APISecret: "s3cr3t",
		BaseURL:   server.URL,
		Timeout:   2 * time.Second,
	})

	result, err := client.Upload(context.Background(), []byte("jpeg-bytes"), "events")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.PublicID != "events/img-1" || result.URL != "https://cdn.example.com/events/img-1.jpg" {
		t.Fatalf("result = %+v", result)
	}
	if gotPath != "/demo/image/upload" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestUploadSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(Config{CloudName: "demo", APISecret: "wrong", BaseURL: server.URL})

	if _, err := client.Upload(context.Background(), []byte("x"), "events"); err == nil {
		t.Fatal("expected error from 401 response")
	}
}

func TestDestroy(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("public_id") != "events/img-1" {
			t.Errorf("public_id = %q", r.FormValue("public_id"))
		}
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	client := New(Config{CloudName: "demo", APIKey: "key-1", APISecret: "s3cr3t", BaseURL: server.URL})

	if err := client.Destroy(context.Background(), "events/img-1"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if gotPath != "/demo/image/destroy" {
		t.Errorf("path = %q", gotPath)
	}

	// Destroying nothing is a no-op.
	if err := client.Destroy(context.Background(), ""); err != nil {
		t.Fatalf("empty public id: %v", err)
	}
}

func TestDestroyEncodesPublicID(t *testing.T) {
	const publicID = "events/a+b&c=d"

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r.FormValue("public_id")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	client := New(Config{CloudName: "demo", APIKey: "key-1", APISecret: "s3cr3t", BaseURL: server.URL})

	if err := client.Destroy(context.Background(), publicID); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if got != publicID {
		t.Errorf("public_id = %q, want %q", got, publicID)
	}
}
