//go:build e2e
// +build e2e

// End-to-end test for the animal registry.
//
// Purpose:
//
//	Validates the category-uniqueness and animal-upload flows against a
//	real MongoDB instance, and the MinIO asset backend against a real
//	MinIO instance, using dockertest. Network ports are dynamically
//	mapped; the test queries assigned host ports and wires them into the
//	service configuration.
//
// Usage:
//
//	Requires Docker available to the test runner. Run:
//	  go test -tags e2e -v ./tests/e2e
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ory/dockertest/v3"

	"animal-registry/internal/assets"
	"animal-registry/internal/server"
	"animal-registry/internal/store"
)

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker daemon unavailable: %v", err)
	}
	pool.MaxWait = 2 * time.Minute
	return pool
}

func startMongo(t *testing.T, pool *dockertest.Pool) string {
	t.Helper()
	resource, err := pool.Run("mongo", "7.0", nil)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://localhost:%s/?directConnection=true", resource.GetPort("27017/tcp"))

	if err := pool.Retry(func() error {
		m := store.NewManager(uri, "AnimalDatabase")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		defer m.Close(ctx)
		return m.Ping(ctx)
	}); err != nil {
		t.Fatalf("mongo never became ready: %v", err)
	}
	return uri
}

func TestCategoryAndAnimalFlow(t *testing.T) {
	pool := newPool(t)
	uri := startMongo(t, pool)

	st := store.NewManager(uri, "AnimalDatabase")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(ctx)
	})

	disk, err := assets.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("disk asset store: %v", err)
	}

	log := server.NewLoggerFromEnv()
	srv := server.New(server.Config{Addr: ":0", DBName: "AnimalDatabase", Storage: server.StorageDisk}, st, disk, log)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	client := &http.Client{Timeout: 30 * time.Second}

	t.Run("create category", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/categories", `{"name":"Mammal"}`)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["categoryId"] == "" {
			t.Error("expected a categoryId")
		}
	})

	t.Run("duplicate category rejected", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/categories", `{"name":"Mammal"}`)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		if body := decodeBody(t, resp); body["message"] != "Category already exists." {
			t.Errorf("message = %q", body["message"])
		}
	})

	var imagePath string
	t.Run("create animal with image", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("name", "Lion")
		fw, _ := mw.CreateFormFile("image", "lion.png")
		_, _ = fw.Write([]byte("png payload"))
		_ = mw.Close()

		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/animals", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("post animal: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			raw, _ := io.ReadAll(resp.Body)
			t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
		}
		if body := decodeBody(t, resp); body["animalId"] == "" {
			t.Error("expected an animalId")
		}
	})

	t.Run("list animals", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/animals")
		if err != nil {
			t.Fatalf("get animals: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var animals []map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&animals); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(animals) != 1 {
			t.Fatalf("expected 1 animal, got %d", len(animals))
		}
		image, _ := animals[0]["image"].(map[string]any)
		imagePath, _ = image["path"].(string)
		if !strings.HasPrefix(imagePath, "/uploads/") {
			t.Fatalf("image path = %q", imagePath)
		}
	})

	t.Run("fetch stored image", func(t *testing.T) {
		resp, err := client.Get(ts.URL + imagePath)
		if err != nil {
			t.Fatalf("get image: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		raw, _ := io.ReadAll(resp.Body)
		if string(raw) != "png payload" {
			t.Error("stored image bytes do not round trip")
		}
	})
}

func TestMinioAssetStore(t *testing.T) {
	pool := newPool(t)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "minio/minio",
		Tag:        "latest",
		Cmd:        []string{"server", "/data"},
		Env: []string{
			"MINIO_ROOT_USER=testadmin",
			"MINIO_ROOT_PASSWORD=testsecret",
		},
	})
	if err != nil {
		t.Fatalf("start minio: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	endpoint := "localhost:" + resource.GetPort("9000/tcp")
	const bucket = "registry-test"

	if err := pool.Retry(func() error {
		mc, err := minio.New(endpoint, &minio.Options{
			Creds: credentials.NewStaticV4("testadmin", "testsecret", ""),
		})
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		exists, err := mc.BucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if !exists {
			return mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		}
		return nil
	}); err != nil {
		t.Fatalf("minio never became ready: %v", err)
	}

	ctx := context.Background()
	as, err := assets.NewMinio(ctx, assets.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: "testadmin",
		SecretKey: "testsecret",
		Bucket:    bucket,
	})
	if err != nil {
		t.Fatalf("minio asset store: %v", err)
	}

	if err := as.Check(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}

	asset, err := as.Save(ctx, strings.NewReader("jpeg payload"), "tiger.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	name := strings.TrimPrefix(asset.Path, "/uploads/")

	rc, size, contentType, err := as.Open(ctx, name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if string(raw) != "jpeg payload" || size != int64(len(raw)) || contentType != "image/jpeg" {
		t.Errorf("round trip mismatch: size=%d type=%q body=%q", size, contentType, raw)
	}

	if _, _, _, err := as.Open(ctx, "1700000000000-deadbeef.png"); err == nil {
		t.Error("expected an error for a missing object")
	}
}

func postJSON(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}
