package vtf

import (
	"errors"
	"testing"
)

func TestParseResources(t *testing.T) {
	h := testHeader(64, 64, 7, 3)
	want := []Resource{
		{Tag: TagLowResImage, Data: 96},
		{Tag: TagHighResImage, Data: 224},
		{Tag: TagCRC, Flags: ResourceNoData, Data: 0xdeadbeef},
	}
	h.NumResources = uint32(len(want))
	h.HeaderSize = uint32(HeaderSize + 8*len(want))
	b := append(marshal(t, h), MarshalResources(want)...)

	parsed, err := ParseHeader(b)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	got, err := ParseResources(b, parsed)
	if err != nil {
		t.Fatalf("parse resources: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d resources, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("resource %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	hi, ok := FindResource(got, TagHighResImage)
	if !ok || hi.Data != 224 || hi.Inline() {
		t.Fatalf("high res resource = %+v, %v", hi, ok)
	}
	if crc, _ := FindResource(got, TagCRC); !crc.Inline() {
		t.Fatal("CRC resource should be inline")
	}
	if _, ok := FindResource(got, TagKeyValues); ok {
		t.Fatal("unexpected KVD resource")
	}
}

func TestParseResourcesErrors(t *testing.T) {
	h := testHeader(64, 64, 7, 3)
	h.NumResources = MaxResources + 1
	b := marshal(t, h)
	if _, err := ParseResources(b, &h); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("too many: got err=%v", err)
	}

	h.NumResources = 2
	b = append(marshal(t, h), MarshalResources([]Resource{{Tag: TagHighResImage}})...)
	if _, err := ParseResources(b, &h); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("short: got err=%v", err)
	}
}

func TestParseResourcesBefore73(t *testing.T) {
	h := testHeader(64, 64, 7, 2)
	h.NumResources = 4
	res, err := ParseResources(marshal(t, h), &h)
	if err != nil || res != nil {
		t.Fatalf("got %v, %v; want nil, nil", res, err)
	}
}
