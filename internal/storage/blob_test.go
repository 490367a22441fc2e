package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestBlobDescriptors(t *testing.T) {
	tests := []struct {
		name        string
		b           blob
		key         string
		contentType string
		idKey       string
	}{
		{
			name:        "unit",
			b:           unitBlob("proj", "src__Foo.java"),
			key:         "proj/units/src__Foo.java.json",
			contentType: "application/vnd.typedensity.unit+json",
			idKey:       "unit-id",
		},
		{
			name:        "report",
			b:           reportBlob("proj", "run-1"),
			key:         "proj/reports/run-1.json",
			contentType: "application/vnd.typedensity.report+json",
			idKey:       "run-id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.key(); got != tt.key {
				t.Errorf("key = %q, want %q", got, tt.key)
			}
			if got := tt.b.contentType(); got != tt.contentType {
				t.Errorf("contentType = %q, want %q", got, tt.contentType)
			}
			md := tt.b.metadata()
			if md["project"] != "proj" || md["kind"] != tt.b.kind {
				t.Errorf("metadata = %v, missing project or kind", md)
			}
			if md[tt.idKey] != tt.b.id {
				t.Errorf("metadata[%q] = %q, want %q", tt.idKey, md[tt.idKey], tt.b.id)
			}
			if len(md) != 3 {
				t.Errorf("metadata has %d entries, want 3: %v", len(md), md)
			}
		})
	}
}

// memBlobs records every blob it is handed.
type memBlobs struct {
	data map[string][]byte
	seen []blob
}

func (m *memBlobs) put(_ context.Context, b blob, data []byte) error {
	m.seen = append(m.seen, b)
	m.data[b.key()] = data
	return nil
}

func (m *memBlobs) get(_ context.Context, b blob) ([]byte, error) {
	m.seen = append(m.seen, b)
	data, ok := m.data[b.key()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", b.key(), ErrNotFound)
	}
	return data, nil
}

func TestBlobClientRoutesKinds(t *testing.T) {
	mem := &memBlobs{data: map[string][]byte{}}
	var c Client = blobClient{store: mem}
	ctx := context.Background()

	if err := c.PutUnit(ctx, "p", "x", []byte("unit")); err != nil {
		t.Fatal(err)
	}
	if err := c.PutReport(ctx, "p", "x", []byte("report")); err != nil {
		t.Fatal(err)
	}

	// Same id, different kinds: two objects.
	if len(mem.data) != 2 {
		t.Fatalf("stored %d objects, want 2", len(mem.data))
	}
	u, err := c.GetUnit(ctx, "p", "x")
	if err != nil || string(u) != "unit" {
		t.Errorf("GetUnit = %q, %v", u, err)
	}
	r, err := c.GetReport(ctx, "p", "x")
	if err != nil || string(r) != "report" {
		t.Errorf("GetReport = %q, %v", r, err)
	}
	if _, err := c.GetReport(ctx, "p", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport(missing) error = %v, want ErrNotFound", err)
	}

	wantKinds := []string{kindUnits, kindReports, kindUnits, kindReports, kindReports}
	if len(mem.seen) != len(wantKinds) {
		t.Fatalf("saw %d calls, want %d", len(mem.seen), len(wantKinds))
	}
	for i, b := range mem.seen {
		if b.kind != wantKinds[i] {
			t.Errorf("call %d kind = %q, want %q", i, b.kind, wantKinds[i])
		}
	}
}

func TestS3PutInputCarriesMetadata(t *testing.T) {
	s := &S3Storage{bucket: "bkt"}
	in := s.putInput(reportBlob("proj", "run-9"), []byte("{}"))

	if *in.Bucket != "bkt" || *in.Key != "proj/reports/run-9.json" {
		t.Errorf("bucket/key = %s/%s", *in.Bucket, *in.Key)
	}
	if *in.ContentType != "application/vnd.typedensity.report+json" {
		t.Errorf("ContentType = %s", *in.ContentType)
	}
	if in.Metadata["run-id"] != "run-9" {
		t.Errorf("Metadata = %v, want run-id run-9", in.Metadata)
	}
	if *in.ContentLength != 2 {
		t.Errorf("ContentLength = %d, want 2", *in.ContentLength)
	}
}
