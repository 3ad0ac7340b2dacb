package storage_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/mod-depot/pkg/storage"
)

// fakeS3 is a path-style object store for one bucket.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	puts    []putRecord
}

type putRecord struct {
	key              string
	contentLength    int64
	transferEncoding []string
	decodedLength    string
}

func newFakeS3(t *testing.T, bucket string) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{bucket: bucket, objects: map[string][]byte{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutPrefix(r.URL.Path, "/"+f.bucket+"/")
	if !ok {
		http.Error(w, "wrong bucket", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, err := readPayload(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.puts = append(f.puts, putRecord{
			key:              key,
			contentLength:    r.ContentLength,
			transferEncoding: r.TransferEncoding,
			decodedLength:    r.Header.Get("X-Amz-Decoded-Content-Length"),
		})
		f.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			}
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(data)
		}
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// readPayload returns the object bytes, decoding aws-chunked bodies.
func readPayload(r *http.Request) ([]byte, error) {
	if !strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked") {
		return io.ReadAll(r.Body)
	}

	var out bytes.Buffer
	br := bufio.NewReader(r.Body)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, err
		}
		if _, err := br.ReadString('\n'); err != nil {
			return nil, err
		}
	}
}

func (f *fakeS3) lastPut(t *testing.T) putRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.puts) == 0 {
		t.Fatal("no PUT received")
	}
	return f.puts[len(f.puts)-1]
}

func newS3(t *testing.T, endpoint, prefix string) storage.System {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	sys, err := storage.NewS3(context.Background(), &storage.S3Config{
		Bucket:       "mods",
		Region:       "us-east-1",
		Prefix:       prefix,
		Endpoint:     endpoint,
		AccessKey:    "test",
		SecretKey:    "test",
		UsePathStyle: true,
	}, "/uploads", testLogger())
	if err != nil {
		t.Fatalf("NewS3() failed: %v", err)
	}
	return sys
}

// streamOnly hides every interface but io.Reader.
type streamOnly struct {
	r io.Reader
}

func (s streamOnly) Read(p []byte) (int, error) { return s.r.Read(p) }

func TestS3_Store_SendsLength(t *testing.T) {
	payload := bytes.Repeat([]byte("m"), 1024)

	tests := []struct {
		name string
		body func() io.Reader
	}{
		{"seekable", func() io.Reader { return bytes.NewReader(payload) }},
		{"stream", func() io.Reader { return streamOnly{bytes.NewReader(payload)} }},
		{"limited stream", func() io.Reader { return io.LimitReader(bytes.NewReader(payload), 4096) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakeS3(t, "mods")
			sys := newS3(t, srv.URL, "archives")

			n, err := sys.Store(context.Background(), "pack.zip", tt.body())
			if err != nil {
				t.Fatalf("Store() failed: %v", err)
			}
			if n != 1024 {
				t.Errorf("Store() = %d, want 1024", n)
			}

			put := fake.lastPut(t)
			if put.key != "archives/pack.zip" {
				t.Errorf("object key = %q, want archives/pack.zip", put.key)
			}
			if len(put.transferEncoding) != 0 {
				t.Errorf("Transfer-Encoding = %v, want none", put.transferEncoding)
			}
			if put.contentLength != 1024 && put.decodedLength != "1024" {
				t.Errorf("Content-Length = %d, decoded = %q, want a declared 1024 bytes", put.contentLength, put.decodedLength)
			}
			if !bytes.Equal(fake.objects["archives/pack.zip"], payload) {
				t.Error("stored object differs from payload")
			}
		})
	}
}

func TestS3_Store_SeekedReader(t *testing.T) {
	fake, srv := newFakeS3(t, "mods")
	sys := newS3(t, srv.URL, "")

	r := bytes.NewReader([]byte("headerpayload"))
	r.Seek(6, io.SeekStart)

	n, err := sys.Store(context.Background(), "a.zip", r)
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if n != 7 || string(fake.objects["a.zip"]) != "payload" {
		t.Errorf("Store() = %d, object = %q, want 7 payload", n, fake.objects["a.zip"])
	}
}

func TestS3_OpenValidateDelete(t *testing.T) {
	_, srv := newFakeS3(t, "mods")
	sys := newS3(t, srv.URL, "")
	ctx := context.Background()

	if _, err := sys.Store(ctx, "map.zip", strings.NewReader("canyon")); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	rc, err := sys.Open(ctx, "map.zip")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "canyon" {
		t.Errorf("Open() = %q, want canyon", data)
	}

	if ok, err := sys.Validate(ctx, "map.zip"); err != nil || !ok {
		t.Errorf("Validate() = %v, %v, want true", ok, err)
	}

	if err := sys.Delete(ctx, "map.zip"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if ok, err := sys.Validate(ctx, "map.zip"); err != nil || ok {
		t.Errorf("Validate() after delete = %v, %v, want false", ok, err)
	}
	if _, err := sys.Open(ctx, "map.zip"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Open() after delete error = %v, want ErrNotFound", err)
	}

	if got := sys.Path("map.zip"); got != "/uploads/map.zip" {
		t.Errorf("Path() = %q, want /uploads/map.zip", got)
	}
}

func TestS3_InvalidKeys(t *testing.T) {
	_, srv := newFakeS3(t, "mods")
	sys := newS3(t, srv.URL, "")

	for _, key := range []string{"", "../escape.zip", "/"} {
		if _, err := sys.Store(context.Background(), key, strings.NewReader("x")); !errors.Is(err, storage.ErrInvalidKey) {
			t.Errorf("Store(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}
