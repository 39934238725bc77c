package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"launchpad/internal/blob/core"
)

func TestMockStorePutOverwritesAndGets(t *testing.T) {
	ctx := context.Background()
	s := NewMock()
	if s.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", s.Driver())
	}
	if _, err := s.Put(ctx, "launchpad/site.json", strings.NewReader(`{"v":1}`), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "launchpad/site.json", strings.NewReader(`{"v":2}`), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	info, rc, err := s.Get(ctx, "launchpad/site.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"v":2}` {
		t.Fatalf("body = %q", body)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("content type = %q", info.ContentType)
	}
}

func TestMockStoreMissingKeyIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMock()
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get err = %v", err)
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head err = %v", err)
	}
	existed, err := s.Delete(ctx, "missing")
	if err != nil || existed {
		t.Fatalf("delete = %v, %v", existed, err)
	}
}

func TestMockStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMock()
	for _, k := range []string{"p/b", "p/a", "q/c"} {
		if _, err := s.Put(ctx, k, strings.NewReader(k), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "p/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "p/a" || infos[1].Key != "p/b" {
		t.Fatalf("list = %+v", infos)
	}
	existed, err := s.Delete(ctx, "p/a")
	if err != nil || !existed {
		t.Fatalf("delete = %v, %v", existed, err)
	}
	if _, err := s.Head(ctx, "p/a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head after delete = %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestDecodeChunked(t *testing.T) {
	body, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\nx-amz-checksum-crc32:abc\r\n\r\n"))
	if !ok || string(body) != "hello" {
		t.Fatalf("decode = %q, %v", body, ok)
	}
	if _, ok := decodeChunked([]byte("plain")); ok {
		t.Fatal("plain payload decoded")
	}
}
