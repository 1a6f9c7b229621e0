package node

import (
	"errors"
	"testing"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestAttrsSet(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		present bool
		wantErr bool
	}{
		{name: "string", value: "x", want: "x", present: true},
		{name: "int", value: 42, want: "42", present: true},
		{name: "float", value: 1.5, want: "1.5", present: true},
		{name: "bool", value: true, want: "true", present: true},
		{name: "stringer", value: label("a"), want: "label:a", present: true},
		{name: "error", value: errors.New("bad"), want: "bad", present: true},
		{name: "nil", value: nil},
		{name: "nil pointer", value: (*int)(nil)},
		{name: "node", value: Text("x"), wantErr: true},
		{name: "struct", value: struct{ A int }{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := Attrs{}
			err := attrs.Set("k", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			got, ok := attrs["k"]
			if ok != tt.present {
				t.Fatalf("present = %v, want %v", ok, tt.present)
			}
			if got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttrsOf(t *testing.T) {
	if AttrsOf() != nil {
		t.Error("AttrsOf() should be nil")
	}

	attrs := AttrsOf("id", "main", "tabindex", 3, "hidden", nil, "odd", struct{ A int }{1})
	want := Attrs{"id": "main", "tabindex": "3", "odd": "{1}"}
	if len(attrs) != len(want) {
		t.Fatalf("attrs = %v, want %v", attrs, want)
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attrs[%q] = %q, want %q", k, attrs[k], v)
		}
	}
}
